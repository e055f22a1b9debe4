// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

// Package storage persists simulation and production evaluation reports.
//
// A report is a JSON document written once and never mutated. The store
// writes to a temporary file in the same directory and renames it into
// place, so the API and other readers only ever see complete reports.
// Saving under a name that already exists fails with ErrReportExists.
// Available runs the same checks without writing, so a long run can fail
// before it starts rather than after it finishes.
//
//	store, err := storage.NewStore("simulation_reports/")
//	if err != nil {
//	    return err
//	}
//	path, err := store.Save("svd-1_2018-11-04v06-00.json", report)
//
// Names must be plain file names ending in .json. Anything containing a
// path separator or starting with a dot is rejected with ErrInvalidName,
// which keeps the HTTP report endpoint from reading outside the directory.
package storage

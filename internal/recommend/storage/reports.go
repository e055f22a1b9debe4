// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// reportExt is the extension of every stored report.
const reportExt = ".json"

var (
	// ErrReportExists is returned when saving under a name already in use.
	// Reports are never overwritten.
	ErrReportExists = errors.New("report already exists")

	// ErrReportNotFound is returned when reading a report that does not exist.
	ErrReportNotFound = errors.New("report not found")

	// ErrInvalidName is returned for names that would escape the store
	// directory or are not .json files.
	ErrInvalidName = errors.New("invalid report name")
)

// ReportMetadata describes a stored report.
type ReportMetadata struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// ReportStore persists simulation and evaluation reports as JSON files in a
// single directory. Reports are write-once.
type ReportStore struct {
	baseDir string
	mu      sync.RWMutex
}

// NewStore creates a report store rooted at baseDir, creating the
// directory if needed.
func NewStore(baseDir string) (*ReportStore, error) {
	if baseDir == "" {
		baseDir = "."
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // report directory is operator configured
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	return &ReportStore{baseDir: baseDir}, nil
}

// Dir returns the directory reports are written to.
func (s *ReportStore) Dir() string {
	return s.baseDir
}

// Save encodes v as indented JSON under name. The file is written to a
// temporary file and renamed into place, so readers never observe a
// partial report.
func (s *ReportStore) Save(name string, v interface{}) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.baseDir, name)
	if err := s.checkFree(name); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.baseDir, "."+name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() //nolint:errcheck // already renamed on success

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close() //nolint:errcheck // sync error takes precedence
		return "", fmt.Errorf("sync report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("rename report: %w", err)
	}

	return path, nil
}

// Available returns nil when a report could be saved under name right now.
// Callers check before doing the work that produces a report; Save checks
// again under the write lock.
func (s *ReportStore) Available(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkFree(name)
}

// checkFree fails with ErrReportExists when name is taken. The caller holds mu.
func (s *ReportStore) checkFree(name string) error {
	_, err := os.Stat(filepath.Join(s.baseDir, name))
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrReportExists, name)
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("stat report: %w", err)
	}
}

// Read returns the raw JSON of the named report.
func (s *ReportStore) Read(name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.baseDir, name)) //nolint:gosec // name validated above
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return data, nil
}

// Load decodes the named report into target.
func (s *ReportStore) Load(name string, target interface{}) error {
	data, err := s.Read(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode report %s: %w", name, err)
	}
	return nil
}

// List returns metadata for every stored report, newest first.
func (s *ReportStore) List() ([]ReportMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read report directory: %w", err)
	}

	reports := make([]ReportMetadata, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || validateName(entry.Name()) != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		reports = append(reports, ReportMetadata{
			Name:     entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].Modified.Equal(reports[j].Modified) {
			return reports[i].Name < reports[j].Name
		}
		return reports[i].Modified.After(reports[j].Modified)
	})
	return reports, nil
}

// validateName accepts plain, visible .json file names only.
func validateName(name string) error {
	switch {
	case name == "",
		strings.HasPrefix(name, "."),
		strings.ContainsAny(name, `/\`),
		name != filepath.Base(name),
		!strings.HasSuffix(name, reportExt):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

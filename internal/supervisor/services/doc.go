// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

/*
Package services adapts Eventrec components to suture's Serve pattern.

	type Service interface {
	    Serve(ctx context.Context) error
	}

RecommendService runs the production pipeline on a cron schedule
(robfig/cron, standard five-field specs, UTC). Runs get their own run ID and
a timeout, never overlap, and a failed run is logged without crashing the
service, so suture only restarts it for genuine faults.

HTTPServerService wraps *http.Server and binds its own listener, so a port
conflict is a restartable service failure. Context cancellation triggers a
graceful Shutdown bounded by the configured timeout.

Both implement fmt.Stringer so supervisor events name them.
*/
package services

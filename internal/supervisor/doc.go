// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

/*
Package supervisor runs the long-lived half of Eventrec under suture v4.

`eventrec serve` builds a two-layer tree:

	RootSupervisor ("eventrec")
	├── PipelineSupervisor ("pipeline-layer")
	│   └── RecommendService (cron-scheduled production runs)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (health, metrics, report listing)

Crashed services are restarted with suture's backoff; a failing production
run is logged by the service itself and does not count as a crash.
Supervisor events are written through sutureslog into the zerolog stream:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddPipelineService(recommendSvc)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
	return tree.Serve(ctx)

Service wrappers live in the services subpackage.
*/
package supervisor

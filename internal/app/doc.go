// Package app wires the analytics service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration from defaults, the config file and CHP_* variables
//  2. Initialize logging and OpenTelemetry
//  3. Create the dataset cache, analytics engine and services
//  4. Set up HTTP handlers and middleware
//  5. Warm the dataset cache and start the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM: in-flight requests complete within the
// shutdown timeout and telemetry providers are flushed.
//
// The app never calls os.Exit; errors are returned to main.
package app

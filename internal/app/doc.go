// Package app wires the web front end together and manages its lifecycle.
//
// New builds the pipeline services from config, mounts the form, JSON API,
// health and Prometheus routes on a chi router, and prepares the HTTP
// server. Serve runs the server next to the download janitor in one
// errgroup; when the context ends or either fails, Stop drains requests
// within Server.ShutdownTimeout and flushes OpenTelemetry.
//
// Usage from main:
//
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	return application.Run(context.Background())
//
// All initialization errors are returned to the caller; the package never
// calls os.Exit.
package app

// Package app assembles the analysis server: telemetry, the mapping store,
// the analysis and health services, the HTTP router and the server itself.
//
// # Initialization Flow
//
//	1. Initialize logging (unless the caller supplies a logger)
//	2. Initialize OpenTelemetry providers and business metrics
//	3. Create the confirmed-mapping store and the analysis service
//	4. Build the chi router with the middleware chain and API routes
//	5. Configure the HTTP server from the server settings
//
// # Middleware Chain
//
//	RequestID → RealIP → StripSlashes → OTel → Recoverer → SecurityHeaders
//	→ CORS → RateLimiter (when enabled)
//
// Routes under /api/v1 additionally pass through the error middleware, a
// request timeout and, for upload and mapping endpoints, content-type and
// JSON body validation.
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// Run blocks until ctx is cancelled or SIGINT/SIGTERM arrives, then drains
// in-flight requests within the shutdown timeout and flushes telemetry.
package app

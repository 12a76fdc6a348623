// Package http implements the HTTP handlers of the analysis API. Handlers
// stay thin: they parse the request, call the analysis service and render
// the result, leaving every error to the RFC 7807 error handler.
//
// # Endpoints
//
//	POST   /api/v1/mapping/detect     multipart "file"; proposed column mapping
//	POST   /api/v1/mapping/confirm    JSON {columns, mapping}; 204
//	GET    /api/v1/mapping/confirmed  stored confirmed mappings
//	DELETE /api/v1/mapping/confirmed  JSON {columns}; 204 or 404
//	POST   /api/v1/analyze            multipart "file" and optional "mapping";
//	                                  query granularity, inactivity_days,
//	                                  pareto_target, top_n
//	GET    /api/v1/health             overall health, /ready and /live probes
//	GET    /api/v1/version            build information
//	GET    /metrics                   Prometheus scrape endpoint
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → AnalysisService
//	                                              ↓
//	HTTP Response ← Handler ← AnalysisResult ←────┘
//
// Uploads are bounded by the configured maximum size; oversized bodies are
// answered with 413 before the file is parsed.
package http

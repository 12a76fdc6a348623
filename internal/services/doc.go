// Package services implements the business logic layer of JITU.
// It sits between the HTTP handlers and the CLI on one side and the
// ingestion and analytics packages on the other, so both delivery surfaces
// run exactly the same pipeline.
//
// # Pipeline
//
// AnalysisService runs one analysis in four stages:
//
//	1. Load: a CSV or XLSX upload becomes a RawTable
//	2. Resolve mapping: an explicit mapping wins, then a confirmed mapping
//	   stored for the same header fingerprint, then heuristic detection
//	3. Normalize: the mapping is applied row by row, unreadable rows are
//	   skipped and reported
//	4. Analyze: every metric is computed over the canonical table
//
// Each run gets a UUID run ID that appears in its logs and span attributes.
// An incomplete detection stops the run with *mapping.IncompleteMappingError
// so the caller can ask the user to assign the missing columns.
//
// # Health
//
// HealthService reports liveness, readiness and version information for
// the HTTP API.
package services

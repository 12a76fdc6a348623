// Package config loads the application configuration.
//
// Values come from three layers, later layers winning:
//
//  1. Default()
//  2. an optional YAML file (jitu.yaml, config.yaml or configs/config.yaml,
//     or an explicit path)
//  3. environment variables prefixed with JITU_
//
// Examples:
//
//	JITU_SERVER_PORT=9000
//	JITU_LOGGING_LEVEL=debug
//	JITU_ANALYSIS_INACTIVITY_DAYS=30
//	JITU_ANALYSIS_GRANULARITY=weekly
//	JITU_INGEST_MAX_UPLOAD_BYTES=10485760
//
// The merged result is checked with go-playground/validator struct tags.
package config

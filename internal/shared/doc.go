// Package shared holds code used across packages that belongs to no single
// layer. Today that is only the testutil subpackage: a buffered slog handler
// with log assertions, and transaction fixtures such as the two-row coffee
// shop upload used throughout the pipeline tests.
package shared

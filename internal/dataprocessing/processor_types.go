package dataprocessing

import (
	"jitu/pkg/contracts/domain"
)

// Processor defines the interface for canonical row post-processing
type Processor interface {
	// Process takes normalized rows and returns standardized rows
	Process(rows []domain.CanonicalRow) []domain.CanonicalRow
}

// ProcessingOptions configures row standardization
type ProcessingOptions struct {
	// FoldProductCase groups product names that differ only by letter case
	// under the first spelling seen
	FoldProductCase bool `yaml:"fold_product_case" envconfig:"FOLD_PRODUCT_CASE"`

	// DropDuplicates removes rows identical in every canonical field
	DropDuplicates bool `yaml:"drop_duplicates" envconfig:"DROP_DUPLICATES"`
}

// DefaultOptions returns default processing options
func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		FoldProductCase: false,
		DropDuplicates:  false,
	}
}

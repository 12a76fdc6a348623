package mapping

import (
	"errors"
	"fmt"
	"strings"

	"jitu/pkg/contracts/domain"
)

var (
	// ErrIncompleteMapping is matched by *IncompleteMappingError
	ErrIncompleteMapping = errors.New("incomplete column mapping")
	// ErrInvalidMapping is matched by *InvalidMappingError
	ErrInvalidMapping = errors.New("invalid column mapping")
)

// IncompleteMappingError lists the mandatory roles without a column.
// Callers resolve it by asking the user to assign the columns.
type IncompleteMappingError struct {
	Missing []domain.Role `json:"missing"`
	Columns []string      `json:"columns,omitempty"`
}

func (e *IncompleteMappingError) Error() string {
	names := make([]string, len(e.Missing))
	for i, r := range e.Missing {
		names[i] = string(r)
	}
	return fmt.Sprintf("incomplete column mapping: no column for %s", strings.Join(names, ", "))
}

func (e *IncompleteMappingError) Is(target error) bool {
	return target == ErrIncompleteMapping
}

// InvalidMappingError reports a user-supplied mapping that cannot be applied
type InvalidMappingError struct {
	Problems []string `json:"problems"`
}

func (e *InvalidMappingError) Error() string {
	return "invalid column mapping: " + strings.Join(e.Problems, "; ")
}

func (e *InvalidMappingError) Is(target error) bool {
	return target == ErrInvalidMapping
}

package fields

import (
	"errors"
	"fmt"
)

// ErrParse is matched by every *ParseError through errors.Is
var ErrParse = errors.New("unparseable cell")

// Kind names the field type a parser was asked for
type Kind string

const (
	KindCurrency Kind = "currency"
	KindDate     Kind = "date"
	KindQuantity Kind = "quantity"
)

// ParseError reports a single cell that could not be converted.
// It is recovered by the row normalizer and never aborts a run.
type ParseError struct {
	Kind   Kind   `json:"kind"`
	Input  string `json:"input"`
	Reason string `json:"reason"`
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s from %q: %s", e.Kind, e.Input, e.Reason)
}

// Is makes errors.Is(err, ErrParse) true for any ParseError
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func newParseError(kind Kind, raw any, reason string) *ParseError {
	return &ParseError{Kind: kind, Input: describe(raw), Reason: reason}
}

func describe(raw any) string {
	if raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", raw)
}

package fields

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultQuantity is used whenever a quantity cell is absent or unusable
const DefaultQuantity int64 = 1

// QuantityResult is the outcome of reading a quantity cell. Reading never
// fails: unusable cells produce DefaultQuantity with Defaulted set and a reason.
type QuantityResult struct {
	Value     int64  `json:"value"`
	Defaulted bool   `json:"defaulted"`
	Reason    string `json:"reason,omitempty"`
}

var (
	quantityUnits  = regexp.MustCompile(`\s*(?:pcs|pc|buah|bh|porsi|unit|units|item|items|cup|gelas|botol|bungkus|bks|x)\.?$`)
	quantityPrefix = regexp.MustCompile(`^(?:x|qty|jumlah)[\s:.]*`)
)

// ParseQuantity reads a positive integer quantity from raw
func ParseQuantity(raw any) QuantityResult {
	value, err := quantityValue(raw)
	if err != nil {
		return QuantityResult{Value: DefaultQuantity, Defaulted: true, Reason: err.Reason}
	}
	if !value.IsInteger() {
		return QuantityResult{Value: DefaultQuantity, Defaulted: true, Reason: "not a whole number"}
	}
	if value.LessThan(decimal.NewFromInt(1)) {
		return QuantityResult{Value: DefaultQuantity, Defaulted: true, Reason: "not positive"}
	}
	if !value.BigInt().IsInt64() {
		return QuantityResult{Value: DefaultQuantity, Defaulted: true, Reason: "out of range"}
	}
	return QuantityResult{Value: value.IntPart()}
}

func quantityValue(raw any) (decimal.Decimal, *ParseError) {
	s, ok := raw.(string)
	if !ok {
		v, err := numericValue(KindQuantity, raw)
		if err != nil {
			return decimal.Zero, err.(*ParseError)
		}
		return v, nil
	}

	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, newParseError(KindQuantity, raw, "blank")
	}
	s = quantityPrefix.ReplaceAllString(s, "")
	s = quantityUnits.ReplaceAllString(s, "")
	s = removeSpaces(s)
	if !digitsOnly.MatchString(s) || !strings.ContainsAny(s, "0123456789") {
		return decimal.Zero, newParseError(KindQuantity, raw, "not a number")
	}
	res, err := parseSeparated(s, s)
	if err != nil {
		return decimal.Zero, newParseError(KindQuantity, raw, "not a number")
	}
	return res.Amount, nil
}

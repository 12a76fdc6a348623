package fields

import (
	"encoding/json"
	"math"
	"math/big"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// DefaultCurrencyPrecision keeps two fractional digits so sen amounts such as
// "15.000,50" survive. Use precision 0 for whole-rupiah rounding.
const DefaultCurrencyPrecision int32 = 2

// CurrencyRule names the rule that produced an amount
type CurrencyRule string

const (
	RuleNumeric                  CurrencyRule = "numeric"
	RulePlainDigits              CurrencyRule = "plain_digits"
	RuleMagnitudeSuffix          CurrencyRule = "magnitude_suffix"
	RuleDotThousandsCommaDecimal CurrencyRule = "dot_thousands_comma_decimal"
	RuleCommaThousandsDotDecimal CurrencyRule = "comma_thousands_dot_decimal"
	RuleDotDecimal               CurrencyRule = "dot_decimal"
	RuleCommaDecimal             CurrencyRule = "comma_decimal"
	RuleDotThousands             CurrencyRule = "dot_thousands"
	RuleCommaThousands           CurrencyRule = "comma_thousands"
)

// CurrencyResult is a parsed amount with the rule applied.
// Ambiguous marks parses decided by a heuristic that could read the input differently.
type CurrencyResult struct {
	Amount    decimal.Decimal `json:"amount"`
	Rule      CurrencyRule    `json:"rule"`
	Ambiguous bool            `json:"ambiguous"`
}

var (
	currencyPrefix = regexp.MustCompile(`^(?:rp|idr|rs)\.?`)
	currencyCode   = regexp.MustCompile(`(?:rp|idr)\.?$`)
	magnitudeForm  = regexp.MustCompile(`^(\d*(?:[.,]\d+)*)(ribu|rb|k|juta|jt|million|miliar|milyar|billion)$`)
	digitsOnly     = regexp.MustCompile(`^[\d.,]+$`)
	dotGrouping    = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	commaGrouping  = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
	anyGrouping    = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)
)

var magnitudes = map[string]int64{
	"k":       1_000,
	"rb":      1_000,
	"ribu":    1_000,
	"jt":      1_000_000,
	"juta":    1_000_000,
	"million": 1_000_000,
	"miliar":  1_000_000_000,
	"milyar":  1_000_000_000,
	"billion": 1_000_000_000,
}

// CurrencyParser converts Indonesian-style money cells to decimal amounts
type CurrencyParser struct {
	precision int32
}

// NewCurrencyParser returns a parser rounding to precision fractional digits
func NewCurrencyParser(precision int32) *CurrencyParser {
	if precision < 0 {
		precision = 0
	}
	return &CurrencyParser{precision: precision}
}

var defaultCurrencyParser = NewCurrencyParser(DefaultCurrencyPrecision)

// ParseCurrency parses raw with the default precision
func ParseCurrency(raw any) (decimal.Decimal, error) {
	return defaultCurrencyParser.Parse(raw)
}

// ParseCurrencyDetailed parses raw with the default precision and reports the rule used
func ParseCurrencyDetailed(raw any) (CurrencyResult, error) {
	return defaultCurrencyParser.ParseDetailed(raw)
}

// Parse returns the amount only
func (p *CurrencyParser) Parse(raw any) (decimal.Decimal, error) {
	res, err := p.ParseDetailed(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return res.Amount, nil
}

// ParseDetailed converts raw into an amount. Numbers pass through, negative
// values included. Strings go through prefix, sentinel, suffix and separator
// handling in that order.
func (p *CurrencyParser) ParseDetailed(raw any) (CurrencyResult, error) {
	if s, ok := raw.(string); ok {
		return p.parseString(s)
	}
	amount, err := numericValue(KindCurrency, raw)
	if err != nil {
		return CurrencyResult{}, err
	}
	return CurrencyResult{Amount: amount.Round(p.precision), Rule: RuleNumeric}, nil
}

func (p *CurrencyParser) parseString(raw string) (CurrencyResult, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return CurrencyResult{}, newParseError(KindCurrency, raw, "blank")
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimSpace(s[1:])
	}
	s = currencyPrefix.ReplaceAllString(s, "")
	s = removeSpaces(s)
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}
	s = currencyCode.ReplaceAllString(s, "")
	for _, sentinel := range []string{",-", ".-", "-"} {
		if strings.HasSuffix(s, sentinel) {
			s = strings.TrimSuffix(s, sentinel)
			break
		}
	}

	if !strings.ContainsAny(s, "0123456789") {
		return CurrencyResult{}, newParseError(KindCurrency, raw, "no digits")
	}

	var (
		res CurrencyResult
		err error
	)
	if m := magnitudeForm.FindStringSubmatch(s); m != nil {
		res, err = parseMagnitude(raw, m[1], m[2])
	} else if digitsOnly.MatchString(s) {
		res, err = parseSeparated(raw, s)
	} else {
		err = newParseError(KindCurrency, raw, "unexpected characters")
	}
	if err != nil {
		return CurrencyResult{}, err
	}

	if negative {
		res.Amount = res.Amount.Neg()
	}
	res.Amount = res.Amount.Round(p.precision)
	return res, nil
}

func parseMagnitude(raw, base, suffix string) (CurrencyResult, error) {
	multiplier := decimal.NewFromInt(magnitudes[suffix])
	res := CurrencyResult{Rule: RuleMagnitudeSuffix}

	var value decimal.Decimal
	switch seps := strings.Count(base, ".") + strings.Count(base, ","); {
	case seps == 0:
		value, _ = decimal.NewFromString(base)
	case anyGrouping.MatchString(base):
		// "1.500rb" reads as 1500 thousand; "1.5rb" would be a decimal.
		value, _ = decimal.NewFromString(stripSeparators(base))
		res.Ambiguous = true
	case seps == 1:
		idx := strings.IndexAny(base, ".,")
		value = fromParts(base[:idx], base[idx+1:])
	default:
		return CurrencyResult{}, newParseError(KindCurrency, raw, "malformed number before magnitude suffix")
	}
	res.Amount = value.Mul(multiplier)
	return res, nil
}

// parseSeparated interprets a string of digits, dots and commas
func parseSeparated(raw, s string) (CurrencyResult, error) {
	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots == 0 && commas == 0:
		v, _ := decimal.NewFromString(s)
		return CurrencyResult{Amount: v, Rule: RulePlainDigits}, nil

	case dots > 0 && commas > 0:
		last := strings.LastIndexAny(s, ".,")
		if s[last] == ',' {
			if commas != 1 {
				return CurrencyResult{}, newParseError(KindCurrency, raw, "more than one decimal comma")
			}
			return CurrencyResult{
				Amount: fromParts(stripSeparators(s[:last]), s[last+1:]),
				Rule:   RuleDotThousandsCommaDecimal,
			}, nil
		}
		if dots != 1 {
			return CurrencyResult{}, newParseError(KindCurrency, raw, "more than one decimal point")
		}
		return CurrencyResult{
			Amount:    fromParts(stripSeparators(s[:last]), s[last+1:]),
			Rule:      RuleCommaThousandsDotDecimal,
			Ambiguous: true,
		}, nil

	case dots > 0:
		idx := strings.IndexByte(s, '.')
		if dots == 1 && len(s)-idx-1 <= 2 {
			return CurrencyResult{
				Amount:    fromParts(s[:idx], s[idx+1:]),
				Rule:      RuleDotDecimal,
				Ambiguous: true,
			}, nil
		}
		v, _ := decimal.NewFromString(stripSeparators(s))
		return CurrencyResult{Amount: v, Rule: RuleDotThousands, Ambiguous: !dotGrouping.MatchString(s)}, nil

	default:
		idx := strings.IndexByte(s, ',')
		if commas == 1 && len(s)-idx-1 <= 2 {
			return CurrencyResult{Amount: fromParts(s[:idx], s[idx+1:]), Rule: RuleCommaDecimal}, nil
		}
		v, _ := decimal.NewFromString(stripSeparators(s))
		return CurrencyResult{Amount: v, Rule: RuleCommaThousands, Ambiguous: !commaGrouping.MatchString(s)}, nil
	}
}

func fromParts(intPart, fracPart string) decimal.Decimal {
	if intPart == "" {
		intPart = "0"
	}
	if fracPart == "" {
		v, _ := decimal.NewFromString(intPart)
		return v
	}
	v, _ := decimal.NewFromString(intPart + "." + fracPart)
	return v
}

func stripSeparators(s string) string {
	return strings.NewReplacer(".", "", ",", "").Replace(s)
}

func removeSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// numericValue converts the numeric cell types produced by the loaders
func numericValue(kind Kind, raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, newParseError(kind, raw, "blank")
	case decimal.Decimal:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, newParseError(kind, raw, "not a finite number")
		}
		return decimal.NewFromFloat(v), nil
	case float32:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, newParseError(kind, raw, "not a finite number")
		}
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int8:
		return decimal.NewFromInt(int64(v)), nil
	case int16:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(v)), 0), nil
	case uint8:
		return decimal.NewFromInt(int64(v)), nil
	case uint16:
		return decimal.NewFromInt(int64(v)), nil
	case uint32:
		return decimal.NewFromInt(int64(v)), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0), nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, newParseError(kind, raw, "invalid JSON number")
		}
		return d, nil
	default:
		return decimal.Zero, newParseError(kind, raw, "unsupported cell type")
	}
}

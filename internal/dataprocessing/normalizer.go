package dataprocessing

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"jitu/internal/fields"
	"jitu/internal/mapping"
	"jitu/pkg/contracts/domain"
)

// SkippedRow names a dropped input row and why it was dropped
type SkippedRow struct {
	Index   int      `json:"index"`
	Reasons []string `json:"reasons"`
}

// LowConfidence flags a cell parsed by an ambiguity heuristic
type LowConfidence struct {
	Index int         `json:"index"`
	Role  domain.Role `json:"role"`
	Input string      `json:"input"`
	Rule  string      `json:"rule"`
}

// Report summarizes one normalization run
type Report struct {
	TotalRows         int             `json:"total_rows"`
	Kept              int             `json:"kept"`
	Skipped           []SkippedRow    `json:"skipped"`
	SkipRate          float64         `json:"skip_rate"`
	SkipReasons       map[string]int  `json:"skip_reasons"`
	QuantityDefaulted int             `json:"quantity_defaulted"`
	DuplicatesRemoved int             `json:"duplicates_removed"`
	ProductsFolded    int             `json:"products_folded"`
	LowConfidence     []LowConfidence `json:"low_confidence,omitempty"`
}

// SkippedIndices returns the indices of dropped rows in input order
func (r Report) SkippedIndices() []int {
	out := make([]int, len(r.Skipped))
	for i, s := range r.Skipped {
		out[i] = s.Index
	}
	return out
}

// NormalizerOptions configures a TableNormalizer
type NormalizerOptions struct {
	CurrencyPrecision int32
	Processing        ProcessingOptions
	// MaxSkipRate above which a warning is logged; 0 disables the warning
	MaxSkipRate float64
}

// DefaultNormalizerOptions returns the defaults used by the analysis pipeline
func DefaultNormalizerOptions() NormalizerOptions {
	return NormalizerOptions{
		CurrencyPrecision: fields.DefaultCurrencyPrecision,
		Processing:        DefaultOptions(),
		MaxSkipRate:       0.5,
	}
}

// TableNormalizer converts a RawTable into a CanonicalTable using a column mapping
type TableNormalizer struct {
	currency    *fields.CurrencyParser
	processor   *RowStandardizer
	maxSkipRate float64
	logger      *slog.Logger
}

// NewTableNormalizer creates a normalizer
func NewTableNormalizer(logger *slog.Logger, opts NormalizerOptions) *TableNormalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableNormalizer{
		currency:    fields.NewCurrencyParser(opts.CurrencyPrecision),
		processor:   NewRowStandardizer(opts.Processing),
		maxSkipRate: opts.MaxSkipRate,
		logger:      logger.With(slog.String("component", "table_normalizer")),
	}
}

// Normalize applies m to every row of raw. Rows whose date, product or price
// cannot be read are skipped and listed in the report; they never fail the
// run. The only error is a mapping that is incomplete or refers to columns the
// table does not have. A table without rows normalizes to an empty table.
func (n *TableNormalizer) Normalize(raw domain.RawTable, m domain.ColumnMapping) (domain.CanonicalTable, Report, error) {
	report := Report{
		TotalRows:   raw.Len(),
		Skipped:     []SkippedRow{},
		SkipReasons: map[string]int{},
	}
	if raw.Len() == 0 {
		n.logger.Info("normalization skipped, table is empty")
		return domain.CanonicalTable{}, report, nil
	}
	if err := mapping.Validate(raw.Columns, m); err != nil {
		return domain.CanonicalTable{}, report, err
	}

	dateCol, _ := m.Column(domain.RoleDate)
	productCol, _ := m.Column(domain.RoleProduct)
	priceCol, _ := m.Column(domain.RolePrice)
	qtyCol, hasQty := m.Column(domain.RoleQuantity)
	categoryCol, hasCategory := m.Column(domain.RoleCategory)
	customerCol, hasCustomer := m.Column(domain.RoleCustomer)

	rows := make([]domain.CanonicalRow, 0, raw.Len())
	for idx, in := range raw.Rows {
		var reasons []string
		out := domain.CanonicalRow{SourceIndex: idx, Quantity: fields.DefaultQuantity}

		date, err := fields.ParseDateDetailed(in[dateCol])
		if err != nil {
			reasons = append(reasons, reasonOf(domain.RoleDate, err))
		} else {
			out.Date = date.Date
			if date.Ambiguous {
				report.LowConfidence = append(report.LowConfidence, LowConfidence{
					Index: idx, Role: domain.RoleDate, Input: cellString(in[dateCol]), Rule: string(date.Pattern),
				})
			}
		}

		out.Product = collapseSpaces(cellString(in[productCol]))
		if out.Product == "" {
			reasons = append(reasons, "product: empty")
		}

		price, err := n.currency.ParseDetailed(in[priceCol])
		switch {
		case err != nil:
			reasons = append(reasons, reasonOf(domain.RolePrice, err))
		case price.Amount.IsNegative():
			reasons = append(reasons, "price: negative amount")
		default:
			out.Price = price.Amount
			if price.Ambiguous {
				report.LowConfidence = append(report.LowConfidence, LowConfidence{
					Index: idx, Role: domain.RolePrice, Input: cellString(in[priceCol]), Rule: string(price.Rule),
				})
			}
		}

		if len(reasons) > 0 {
			report.Skipped = append(report.Skipped, SkippedRow{Index: idx, Reasons: reasons})
			for _, r := range reasons {
				report.SkipReasons[r]++
			}
			n.logger.Debug("row skipped", slog.Int("row", idx), slog.Any("reasons", reasons))
			continue
		}

		if hasQty {
			q := fields.ParseQuantity(in[qtyCol])
			out.Quantity = q.Value
			if q.Defaulted {
				report.QuantityDefaulted++
			}
		}
		if hasCategory {
			out.Category = collapseSpaces(cellString(in[categoryCol]))
		}
		if hasCustomer {
			out.Customer = collapseSpaces(cellString(in[customerCol]))
		}
		rows = append(rows, out)
	}

	rows, stats := n.processor.ProcessWithStats(rows)
	report.DuplicatesRemoved = stats.DuplicatesRemoved
	report.ProductsFolded = stats.ProductsFolded
	report.Kept = len(rows)
	report.SkipRate = float64(len(report.Skipped)) / float64(report.TotalRows)

	attrs := []any{
		slog.Int("total_rows", report.TotalRows),
		slog.Int("kept", report.Kept),
		slog.Int("skipped", len(report.Skipped)),
		slog.Float64("skip_rate", report.SkipRate),
		slog.Int("quantity_defaulted", report.QuantityDefaulted),
		slog.Int("duplicates_removed", report.DuplicatesRemoved),
	}
	if n.maxSkipRate > 0 && report.SkipRate > n.maxSkipRate {
		n.logger.Warn("normalization skipped a large share of rows", attrs...)
	} else {
		n.logger.Info("normalization complete", attrs...)
	}

	return domain.NewCanonicalTable(rows), report, nil
}

// TopSkipReasons returns skip reason keys ordered by frequency, then name
func (r Report) TopSkipReasons() []string {
	keys := make([]string, 0, len(r.SkipReasons))
	for k := range r.SkipReasons {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if r.SkipReasons[keys[i]] != r.SkipReasons[keys[j]] {
			return r.SkipReasons[keys[i]] > r.SkipReasons[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func reasonOf(role domain.Role, err error) string {
	var pe *fields.ParseError
	if errors.As(err, &pe) {
		return fmt.Sprintf("%s: %s", role, pe.Reason)
	}
	return fmt.Sprintf("%s: %v", role, err)
}

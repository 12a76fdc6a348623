package mapping

import (
	"io"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"jitu/internal/fields"
	"jitu/pkg/contracts/domain"
)

// MatchLevel ranks how a column label matched a role keyword
type MatchLevel int

const (
	MatchNone MatchLevel = iota
	MatchSubstring
	MatchToken
	MatchExact
)

func (l MatchLevel) String() string {
	switch l {
	case MatchExact:
		return "exact"
	case MatchToken:
		return "token"
	case MatchSubstring:
		return "substring"
	default:
		return "none"
	}
}

// MarshalText encodes the level by name
func (l MatchLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// majorityShare is the share of non-blank samples that must fit a role's shape
const majorityShare = 0.5

// minSubstringKeyword keeps short keywords such as "rp" from matching inside other words
const minSubstringKeyword = 3

// DefaultSampleRows is how many leading rows the detector inspects
const DefaultSampleRows = 20

// Candidate is one column considered for a role
type Candidate struct {
	Column     string     `json:"column"`
	Keyword    string     `json:"keyword"`
	Level      MatchLevel `json:"level"`
	ShapeScore float64    `json:"shape_score"`
	index      int
}

// ShapeConsistent reports whether a majority of samples fit the role
func (c Candidate) ShapeConsistent() bool {
	return c.ShapeScore >= majorityShare
}

// Detection is the tagged result of mapping detection: either complete, or
// incomplete with the missing mandatory roles listed.
type Detection struct {
	Mapping    domain.ColumnMapping        `json:"mapping"`
	Complete   bool                        `json:"complete"`
	Missing    []domain.Role               `json:"missing,omitempty"`
	Candidates map[domain.Role][]Candidate `json:"candidates"`
	Columns    []string                    `json:"columns"`
}

// Err returns an *IncompleteMappingError when a mandatory role is missing
func (d Detection) Err() error {
	if d.Complete {
		return nil
	}
	return &IncompleteMappingError{Missing: d.Missing, Columns: d.Columns}
}

// Detector proposes column mappings from labels and sample values
type Detector struct {
	keywords   KeywordSet
	sampleRows int
	logger     *slog.Logger
}

// DetectorOption customizes a Detector
type DetectorOption func(*Detector)

// WithKeywords replaces the keyword sets
func WithKeywords(k KeywordSet) DetectorOption {
	return func(d *Detector) {
		d.keywords = k.normalized()
	}
}

// WithSampleRows limits how many rows feed the shape scores
func WithSampleRows(n int) DetectorOption {
	return func(d *Detector) {
		if n > 0 {
			d.sampleRows = n
		}
	}
}

// NewDetector creates a detector with the default keywords
func NewDetector(logger *slog.Logger, opts ...DetectorOption) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Detector{
		keywords:   DefaultKeywords().normalized(),
		sampleRows: DefaultSampleRows,
		logger:     logger.With(slog.String("component", "column_mapper")),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDetector = NewDetector(slog.New(slog.NewTextHandler(io.Discard, nil)))

// DetectMapping runs the default detector
func DetectMapping(columns []string, samples []domain.RawRow) Detection {
	return defaultDetector.Detect(columns, samples)
}

// Detect scores every (role, column) pair and assigns greedily from the
// strongest match down, so each column serves at most one role. Pairs are
// ordered by match level, then by shape consistency, then by shape score,
// then by role order and finally by column position.
func (d *Detector) Detect(columns []string, samples []domain.RawRow) Detection {
	if len(samples) > d.sampleRows {
		samples = samples[:d.sampleRows]
	}

	candidates := make(map[domain.Role][]Candidate, len(domain.AllRoles))
	type pair struct {
		role    domain.Role
		rolePos int
		cand    Candidate
	}
	var pairs []pair

	for rolePos, role := range domain.AllRoles {
		for idx, col := range columns {
			level, keyword := d.match(role, NormalizeLabel(col))
			if level == MatchNone {
				continue
			}
			c := Candidate{
				Column:     col,
				Keyword:    keyword,
				Level:      level,
				ShapeScore: shapeScore(role, col, samples),
				index:      idx,
			}
			candidates[role] = append(candidates[role], c)
			pairs = append(pairs, pair{role: role, rolePos: rolePos, cand: c})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.cand.Level != b.cand.Level {
			return a.cand.Level > b.cand.Level
		}
		if a.cand.ShapeConsistent() != b.cand.ShapeConsistent() {
			return a.cand.ShapeConsistent()
		}
		if a.cand.ShapeScore != b.cand.ShapeScore {
			return a.cand.ShapeScore > b.cand.ShapeScore
		}
		if a.rolePos != b.rolePos {
			return a.rolePos < b.rolePos
		}
		return a.cand.index < b.cand.index
	})

	mapping := make(domain.ColumnMapping)
	used := make(map[string]bool)
	for _, p := range pairs {
		if _, taken := mapping[p.role]; taken || used[p.cand.Column] {
			continue
		}
		mapping[p.role] = p.cand.Column
		used[p.cand.Column] = true
	}

	for role := range candidates {
		sortCandidates(candidates[role])
	}

	missing := mapping.Missing()
	det := Detection{
		Mapping:    mapping,
		Complete:   len(missing) == 0,
		Missing:    missing,
		Candidates: candidates,
		Columns:    append([]string(nil), columns...),
	}

	d.logger.Debug("column mapping detected",
		slog.Int("columns", len(columns)),
		slog.Int("samples", len(samples)),
		slog.Bool("complete", det.Complete),
		slog.Any("mapping", mapping),
		slog.Any("missing", missing))
	return det
}

// match returns the strongest keyword match of label for role
func (d *Detector) match(role domain.Role, label string) (MatchLevel, string) {
	if label == "" {
		return MatchNone, ""
	}
	best, bestKeyword := MatchNone, ""
	padded := " " + label + " "
	for _, kw := range d.keywords[role] {
		level := MatchNone
		switch {
		case label == kw:
			level = MatchExact
		case strings.Contains(padded, " "+kw+" "):
			level = MatchToken
		case len(kw) >= minSubstringKeyword && strings.Contains(label, kw):
			level = MatchSubstring
		}
		if level > best || (level == best && level != MatchNone && len(kw) > len(bestKeyword)) {
			best, bestKeyword = level, kw
		}
	}
	return best, bestKeyword
}

func sortCandidates(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Level != cs[j].Level {
			return cs[i].Level > cs[j].Level
		}
		if cs[i].ShapeScore != cs[j].ShapeScore {
			return cs[i].ShapeScore > cs[j].ShapeScore
		}
		return cs[i].index < cs[j].index
	})
}

// shapeScore is the share of non-blank samples in col that fit role's value shape
func shapeScore(role domain.Role, col string, samples []domain.RawRow) float64 {
	var seen, fit int
	for _, row := range samples {
		v, ok := row[col]
		if !ok || isBlank(v) {
			continue
		}
		seen++
		if fitsShape(role, v) {
			fit++
		}
	}
	if seen == 0 {
		return 0
	}
	return float64(fit) / float64(seen)
}

func fitsShape(role domain.Role, v any) bool {
	switch role {
	case domain.RoleDate:
		_, err := fields.ParseDate(v)
		return err == nil
	case domain.RolePrice:
		_, err := fields.ParseCurrency(v)
		return err == nil
	case domain.RoleQuantity:
		return !fields.ParseQuantity(v).Defaulted
	default:
		return isText(v)
	}
}

// isText accepts labels such as product names: letters present and not a date or amount
func isText(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return false
	}
	if _, err := fields.ParseCurrency(s); err == nil {
		return false
	}
	if _, err := fields.ParseDate(s); err == nil {
		return false
	}
	return true
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

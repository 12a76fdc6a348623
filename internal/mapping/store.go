package mapping

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"jitu/pkg/contracts/domain"
)

// ConfirmedMapping is a user-approved mapping remembered for a header layout
type ConfirmedMapping struct {
	Fingerprint string               `json:"fingerprint"`
	Columns     []string             `json:"columns"`
	Mapping     domain.ColumnMapping `json:"mapping"`
	ConfirmedAt time.Time            `json:"confirmed_at"`
}

// Store keeps confirmed mappings in memory so repeated uploads of the same
// layout skip detection. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]ConfirmedMapping
	now     func() time.Time
	logger  *slog.Logger
}

// NewStore creates an empty store
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		entries: make(map[string]ConfirmedMapping),
		now:     time.Now,
		logger:  logger.With(slog.String("component", "mapping_store")),
	}
}

// Confirm validates m against columns and remembers it
func (s *Store) Confirm(columns []string, m domain.ColumnMapping) (ConfirmedMapping, error) {
	if err := Validate(columns, m); err != nil {
		return ConfirmedMapping{}, err
	}

	entry := ConfirmedMapping{
		Fingerprint: Fingerprint(columns),
		Columns:     append([]string(nil), columns...),
		Mapping:     m.Clone(),
		ConfirmedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.entries[entry.Fingerprint] = entry
	s.mu.Unlock()

	s.logger.Info("column mapping confirmed",
		slog.String("fingerprint", entry.Fingerprint),
		slog.Any("mapping", entry.Mapping))
	return entry, nil
}

// Lookup returns the confirmed mapping for columns. Stored labels are
// translated to the spelling used by columns, since the fingerprint ignores
// case and punctuation.
func (s *Store) Lookup(columns []string) (domain.ColumnMapping, bool) {
	s.mu.RLock()
	entry, ok := s.entries[Fingerprint(columns)]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	byLabel := make(map[string]string, len(columns))
	for _, c := range columns {
		byLabel[NormalizeLabel(c)] = c
	}
	out := make(domain.ColumnMapping, len(entry.Mapping))
	for role, label := range entry.Mapping {
		current, found := byLabel[NormalizeLabel(label)]
		if !found {
			return nil, false
		}
		out[role] = current
	}
	return out, true
}

// Forget removes the mapping stored for columns
func (s *Store) Forget(columns []string) bool {
	fp := Fingerprint(columns)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[fp]; !ok {
		return false
	}
	delete(s.entries, fp)
	return true
}

// List returns all confirmed mappings ordered by fingerprint
func (s *Store) List() []ConfirmedMapping {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ConfirmedMapping, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fingerprint < out[j].Fingerprint })
	return out
}

// Len returns the number of stored mappings
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Validate checks a mapping against the table's columns: roles must be
// canonical, labels must exist, no label may serve two roles and every
// mandatory role must be present.
func Validate(columns []string, m domain.ColumnMapping) error {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}

	var problems []string
	for _, role := range sortedRoles(m) {
		label := m[role]
		if !role.Valid() {
			problems = append(problems, fmt.Sprintf("unknown role %q", role))
			continue
		}
		if label != "" && !known[label] {
			problems = append(problems, fmt.Sprintf("column %q for role %s not found", label, role))
		}
	}

	conflicts := m.Conflicts()
	labels := make([]string, 0, len(conflicts))
	for label := range conflicts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		problems = append(problems, fmt.Sprintf("column %q assigned to more than one role %v", label, conflicts[label]))
	}

	if len(problems) > 0 {
		return &InvalidMappingError{Problems: problems}
	}
	if missing := m.Missing(); len(missing) > 0 {
		return &IncompleteMappingError{Missing: missing, Columns: append([]string(nil), columns...)}
	}
	return nil
}

func sortedRoles(m domain.ColumnMapping) []domain.Role {
	roles := make([]domain.Role, 0, len(m))
	for r := range m {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

package mapping

import (
	"encoding/hex"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint identifies a header layout independent of column order, case,
// diacritics and punctuation
func Fingerprint(columns []string) string {
	labels := make([]string, 0, len(columns))
	for _, c := range columns {
		if n := NormalizeLabel(c); n != "" {
			labels = append(labels, n)
		}
	}
	sort.Strings(labels)
	sum := blake2b.Sum256([]byte(strings.Join(labels, "\x1f")))
	return hex.EncodeToString(sum[:16])
}

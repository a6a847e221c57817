// Package normalize provides text normalization for search and matching.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips combining diacritical marks, so that
// "Brontë" and "bronte" compare equal. Matching in the catalog is
// case-insensitive at the string level; both stored search text and
// incoming queries pass through here.
func Fold(s string) string {
	// The transform chain carries state, so build it per call rather
	// than sharing one across goroutines.
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(chain, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// SearchText builds the derived search string for a book record:
// the space-joined, folded concatenation of the given parts with
// empties dropped. Stored alongside the record, never computed per query.
func SearchText(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return Fold(strings.Join(kept, " "))
}

// ContainsFold reports whether needle occurs within haystack under folding.
// An empty needle matches everything.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(Fold(haystack), Fold(needle))
}

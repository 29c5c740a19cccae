package schedule

import (
	"sort"
	"strings"
	"unicode"

	"github.com/kilianp07/minesched/core/model"
)

// SequenceSites orders active sites by ascending priority followed by the
// inactive ones. Ties are broken by a case-insensitive natural comparison of
// the identifiers so that "S2" sorts before "S10".
func SequenceSites(sites []model.Site) []model.Site {
	out := make([]model.Site, len(sites))
	copy(out, sites)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Active != b.Active {
			return a.Active
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return NaturalLess(a.ID, b.ID)
	})
	return out
}

// NaturalLess compares strings case-insensitively, treating digit runs as numbers.
func NaturalLess(a, b string) bool {
	ar, br := []rune(strings.ToLower(a)), []rune(strings.ToLower(b))
	i, j := 0, 0
	for i < len(ar) && j < len(br) {
		if unicode.IsDigit(ar[i]) && unicode.IsDigit(br[j]) {
			si := i
			for i < len(ar) && unicode.IsDigit(ar[i]) {
				i++
			}
			sj := j
			for j < len(br) && unicode.IsDigit(br[j]) {
				j++
			}
			na := strings.TrimLeft(string(ar[si:i]), "0")
			nb := strings.TrimLeft(string(br[sj:j]), "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		if ar[i] != br[j] {
			return ar[i] < br[j]
		}
		i++
		j++
	}
	if len(ar)-i != len(br)-j {
		return len(ar)-i < len(br)-j
	}
	// Equal ignoring case: fall back to a byte comparison for a total order.
	return a < b
}

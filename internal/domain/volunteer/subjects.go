package volunteer

import (
	"sort"
	"strings"
)

// SubjectSet is the unordered 再选科目 set. It is always kept normalized
// (sorted, deduplicated, no blanks) so that set equality reduces to slice
// equality and the combo string is stable across input orderings.
type SubjectSet []string

// ParseSubjectSet builds a normalized set from a comma-joined profile field.
func ParseSubjectSet(raw string) SubjectSet {
	parts := strings.Split(raw, ",")
	out := make(SubjectSet, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Combo returns the canonical comma-joined form used for storage and for
// grouping during repair.
func (s SubjectSet) Combo() string {
	return strings.Join(s, ",")
}

func (s SubjectSet) Equal(other SubjectSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

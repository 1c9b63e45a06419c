package search

import (
	"slices"
	"strings"

	"github.com/poiesic/launchpad/core"
)

// Filter is the structural predicate applied before scoring. The zero value admits
// every entry. Disabled entries are always excluded, whatever the filter says.
type Filter struct {
	// Categories admits entries in any of the listed categories.
	Categories []string
	// Tags admits entries carrying every listed tag.
	Tags []string
	// Alias restricts results to one mode.
	Alias string
	// Predicate is an optional extra test. Filters with a predicate are never memoised.
	Predicate func(*core.Entry) bool
}

// Allows reports whether e passes the filter.
func (f Filter) Allows(e *core.Entry) bool {
	if !e.Enabled {
		return false
	}
	if len(f.Categories) > 0 && !slices.ContainsFunc(f.Categories, func(c string) bool {
		return strings.EqualFold(c, e.Category)
	}) {
		return false
	}
	for _, tag := range f.Tags {
		if !e.HasTag(tag) {
			return false
		}
	}
	if f.Alias != "" && !strings.EqualFold(f.Alias, e.Alias) {
		return false
	}
	if f.Predicate != nil && !f.Predicate(e) {
		return false
	}
	return true
}

// IsZero reports whether the filter admits every enabled entry.
func (f Filter) IsZero() bool {
	return len(f.Categories) == 0 && len(f.Tags) == 0 && f.Alias == "" && f.Predicate == nil
}

// key renders the filter for memo lookups. ok is false when it cannot be keyed.
func (f Filter) key() (string, bool) {
	if f.Predicate != nil {
		return "", false
	}
	cats := normalizedSorted(f.Categories)
	tags := normalizedSorted(f.Tags)
	return "c=" + strings.Join(cats, ",") + ";t=" + strings.Join(tags, ",") + ";a=" + strings.ToLower(f.Alias), true
}

func normalizedSorted(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	slices.Sort(out)
	return out
}

// Package search filters loaded items and ranks recent queries locally.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/vidfeed/internal/domain"
)

// Match is one item that survived a filter
type Match struct {
	Index          int   // Index in the source slice
	MatchedIndexes []int // Character positions that matched (for highlighting)
	Score          int   // Higher is better
}

// titleIndex implements sahilm/fuzzy.Source over pre-lowered titles
type titleIndex []string

func (t titleIndex) String(i int) string { return t[i] }
func (t titleIndex) Len() int            { return len(t) }

// Filter fuzzy-matches query against the titles of items and returns the
// matches best first. An empty query returns nil, meaning "no filter".
func Filter[T domain.ListItem](query string, items []T) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	idx := make(titleIndex, len(items))
	for i, item := range items {
		idx[i] = strings.ToLower(item.GetTitle())
	}

	found := fuzzy.FindFrom(query, idx)
	matches := make([]Match, len(found))
	for i, m := range found {
		matches[i] = Match{
			Index:          m.Index,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return matches
}

// Indexes returns the source indexes of matches in rank order
func Indexes(matches []Match) []int {
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.Index
	}
	return out
}

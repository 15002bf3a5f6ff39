package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggest ranks recent queries against typed input. Closer matches come
// first; ties keep recency order. Empty input returns the most recent
// queries. At most limit suggestions are returned (limit <= 0 means all).
func Suggest(input string, recent []string, limit int) []string {
	input = strings.TrimSpace(input)

	var out []string
	if input == "" {
		out = append(out, recent...)
	} else {
		ranks := fuzzy.RankFindFold(input, recent)
		sort.SliceStable(ranks, func(i, j int) bool {
			if ranks[i].Distance != ranks[j].Distance {
				return ranks[i].Distance < ranks[j].Distance
			}
			return ranks[i].OriginalIndex < ranks[j].OriginalIndex
		})
		for _, r := range ranks {
			if strings.EqualFold(r.Target, input) {
				continue
			}
			out = append(out, r.Target)
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

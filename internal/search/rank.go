// Rank key computation for spec §4.4: "(match_span_length, len(line),
// line) ascending, where match_span_length is the length of the union
// of offsets (overlap-collapsing sweep)."
package search

import (
	"sort"

	"github.com/dshills/swiftpick/internal/corpus"
)

// SpanLength returns the length of the union of offsets, collapsing
// overlaps with a sweep over offsets sorted by Begin.
func SpanLength(offsets []corpus.Offset) int {
	if len(offsets) == 0 {
		return 0
	}
	sorted := make([]corpus.Offset, len(offsets))
	copy(sorted, offsets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Begin < sorted[j].Begin })

	total := 0
	curBegin, curEnd := sorted[0].Begin, sorted[0].End
	for _, o := range sorted[1:] {
		if o.Begin > curEnd {
			total += curEnd - curBegin
			curBegin, curEnd = o.Begin, o.End
			continue
		}
		if o.End > curEnd {
			curEnd = o.End
		}
	}
	total += curEnd - curBegin
	return total
}

// Less implements the §4.4 rank key's ascending total order: shorter
// match span first, then shorter line, then lexicographic.
func Less(a, b corpus.Match) bool {
	sa, sb := SpanLength(a.Offsets), SpanLength(b.Offsets)
	if sa != sb {
		return sa < sb
	}
	if len(a.Line.Text) != len(b.Line.Text) {
		return len(a.Line.Text) < len(b.Line.Text)
	}
	return a.Line.Text < b.Line.Text
}

// SortByRank sorts matches in place by the rank key. sort.SliceStable
// (not an ecosystem sorting library) is used deliberately: the
// comparator is core domain logic spec §4.4 fully specifies, and no
// pack dependency offers anything beyond what the sort package already
// provides.
func SortByRank(matches []corpus.Match) {
	sort.SliceStable(matches, func(i, j int) bool { return Less(matches[i], matches[j]) })
}

// ReverseBatches reverses the order of batches, preserving in-batch
// order, per §4.4 step 6's "else reverse the accumulation order so
// newest batches appear first (preserving per-batch order)" and
// spec.md §9's chosen interpretation ("arrival order preserved within
// each batch, batches newest-first").
func ReverseBatches(batchSizes []int, matches []corpus.Match) []corpus.Match {
	out := make([]corpus.Match, 0, len(matches))
	idx := len(matches)
	for i := len(batchSizes) - 1; i >= 0; i-- {
		size := batchSizes[i]
		start := idx - size
		out = append(out, matches[start:idx]...)
		idx = start
	}
	return out
}

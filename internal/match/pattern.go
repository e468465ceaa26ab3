// Package match implements the fuzzy and extended matcher family from
// spec §4.1: a closed tagged variant behind one Matcher contract, plus the
// nth field-restriction decorator from the same section.
//
// Grounded on github.com/dshills/keystorm's internal/input/fuzzy (matcher
// shape: Options, a single-pass left-to-right scan, a regex/cache split)
// and internal/project/search (the FileSearcher decorator pattern for
// field/path restriction). The scoring model there is ad-hoc point bonuses;
// this package replaces it with the regex construction spec §4.1 and §8.1
// require, since only a regex search gives a provably leftmost canonical
// match span.
package match

import "github.com/dshills/swiftpick/internal/corpus"

// Pattern is an opaque compiled query, produced by Matcher.Compile and
// consumed by Matcher.Match. Its concrete type is matcher-specific.
type Pattern interface {
	// Source is the original query text the pattern was compiled from.
	Source() string
}

// Matcher is the closed contract every matcher variant implements:
// fuzzy, extended-fuzzy and extended-exact (spec §9 "Dynamic dispatch
// over matcher variants").
type Matcher interface {
	// Empty reports whether query selects the whole input (spec §4.1).
	Empty(query string) bool

	// Compile turns a query into a reusable Pattern. prefix/suffix are
	// query[:cursor] and query[cursor:] respectively; none of the current
	// variants reads them.
	Compile(query, prefix, suffix string) (Pattern, error)

	// Match scans a single line against a compiled pattern. ok is false
	// when the line does not match; offsets is nil when ok is true but
	// the pattern carries no highlight (e.g. empty query).
	Match(line string, p Pattern) (ok bool, offsets []corpus.Offset)
}

// MatchLines runs m over every candidate in lines, returning one Match per
// hit in the order lines were given. This is the per-batch primitive the
// Searcher (spec §4.4 step 5) calls once per accumulated batch.
func MatchLines(m Matcher, p Pattern, lines []corpus.Candidate) []corpus.Match {
	out := make([]corpus.Match, 0, len(lines))
	for _, l := range lines {
		ok, offs := m.Match(l.Text, p)
		if ok {
			out = append(out, corpus.Match{Line: l, Offsets: offs})
		}
	}
	return out
}

// EmptyQueryMatches returns every line unscored, in arrival order, per
// spec §4.4 step 5 ("For empty query: result = all lines ... in arrival
// order") and §3 invariant 2/§8.3.
func EmptyQueryMatches(lines []corpus.Candidate) []corpus.Match {
	out := make([]corpus.Match, len(lines))
	for i, l := range lines {
		out[i] = corpus.Match{Line: l}
	}
	return out
}

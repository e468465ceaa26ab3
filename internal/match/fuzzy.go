package match

import (
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"

	"github.com/dshills/swiftpick/internal/corpus"
)

// Fuzzy implements the plain fuzzy matcher of spec §4.1.
//
// For a query of runes c₁ c₂ … cₙ it builds a pattern equivalent to
// c₁ [^c₁]*? c₂ [^c₂]*? … cₙ: between consecutive query runes, zero or
// more characters not equal to the preceding query rune, lazily. This
// enforces the unique canonical match position spec §9's open question
// calls "greedy-avoid-the-next-query-rune, applied uniformly" — every
// query rune, including multi-byte ones, gets its own negated
// single-rune class rather than falling back to a non-negated `.*?` for
// non-ASCII runes.
//
// Smart-case: with neither Force field set, matching is case-sensitive
// iff the query contains an uppercase rune (spec §4.1).
type Fuzzy struct {
	// ForceCaseSensitive and ForceCaseInsensitive implement -i/+i
	// overriding the smart-case default. At most one should be set.
	ForceCaseSensitive   bool
	ForceCaseInsensitive bool
}

type fuzzyPattern struct {
	source string
	empty  bool
	re     *regexp2.Regexp
}

func (p *fuzzyPattern) Source() string { return p.source }

// Empty reports whether query is the empty string (spec: "all lines
// match with offsets []").
func (f Fuzzy) Empty(query string) bool { return query == "" }

// Compile builds the lazy negated-class regex for query. prefix/suffix
// are unused (Extended ignores them too) but are accepted to satisfy
// Matcher.
func (f Fuzzy) Compile(query, _, _ string) (Pattern, error) {
	if query == "" {
		return &fuzzyPattern{source: query, empty: true}, nil
	}

	caseSensitive := f.ForceCaseSensitive || (!f.ForceCaseInsensitive && hasUpper(query))

	var b strings.Builder
	runes := []rune(query)
	for i, r := range runes {
		b.WriteString(escapeRune(r))
		if i != len(runes)-1 {
			b.WriteString("[^")
			b.WriteString(escapeRuneInClass(r))
			b.WriteString("]*?")
		}
	}

	opts := regexp2.None
	if !caseSensitive {
		opts = regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(b.String(), opts)
	if err != nil {
		return nil, err
	}
	return &fuzzyPattern{source: query, re: re}, nil
}

// Match reports whether line contains the compiled fuzzy pattern and, if
// so, the [begin,end) byte span of the whole match (spec §4.1 "Result
// offset: the span of the whole regex match").
func (f Fuzzy) Match(line string, p Pattern) (bool, []corpus.Offset) {
	fp, ok := p.(*fuzzyPattern)
	if !ok {
		return false, nil
	}
	if fp.empty {
		return true, nil
	}

	m, err := fp.re.FindStringMatch(line)
	if err != nil || m == nil {
		return false, nil
	}

	begin := runeOffsetToByte(line, m.Index)
	end := runeOffsetToByte(line, m.Index+m.Length)
	return true, []corpus.Offset{{Begin: begin, End: end}}
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// escapeRune renders r as a regex literal, quoting metacharacters.
func escapeRune(r rune) string {
	if isRegexMeta(r) {
		return "\\" + string(r)
	}
	if r == 0 {
		return ""
	}
	return string(r)
}

// escapeRuneInClass renders r as a literal inside a [...] class. Only
// `]`, `^`, `\` and `-` need escaping inside a class.
func escapeRuneInClass(r rune) string {
	switch r {
	case ']', '^', '\\', '-':
		return "\\" + string(r)
	default:
		return string(r)
	}
}

func isRegexMeta(r rune) bool {
	switch r {
	case '.', '+', '*', '?', '(', ')', '|', '[', ']', '{', '}', '^', '$', '\\':
		return true
	default:
		return false
	}
}

// runeOffsetToByte converts a rune index (as produced by regexp2 match
// positions, which operate over the string's rune sequence) into a byte
// offset into s.
func runeOffsetToByte(s string, runeIdx int) int {
	if runeIdx <= 0 {
		return 0
	}
	n := 0
	for i := range s {
		if n == runeIdx {
			return i
		}
		n++
	}
	return len(s)
}

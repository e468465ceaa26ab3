package match

import (
	"strings"

	"github.com/dshills/swiftpick/internal/corpus"
)

// termKind classifies one whitespace-separated extended-query term (spec
// §4.1's syntax table).
type termKind int

const (
	termFuzzy termKind = iota
	termExact
	termPrefix
	termSuffix
	termFullLine
)

type term struct {
	kind     termKind
	negate   bool
	text     string
	caseFold bool // true when this term matches case-insensitively
	fuzzy    Pattern
}

// Extended implements both extended sub-variants of spec §4.1: a bare
// word is a fuzzy sub-match when Exact is false, or a literal substring
// when Exact is true. `'word`, `^word`, `word$`, `^word$` and `!term`
// behave identically in both modes.
type Extended struct {
	// Exact selects -e (extended-exact) over -x (extended-fuzzy).
	Exact bool

	ForceCaseSensitive   bool
	ForceCaseInsensitive bool
}

type extendedPattern struct {
	source string
	terms  []term
}

func (p *extendedPattern) Source() string { return p.source }

// Empty reports whether query parses to zero live terms (spec §4.1: a
// term whose text is empty once its `!`, `^`, `$` or `'` marker is
// stripped is dropped; a query made entirely of such terms selects the
// whole input).
func (e Extended) Empty(query string) bool {
	terms, _ := e.parseTerms(query)
	return len(terms) == 0
}

// Compile parses query into terms and precompiles any fuzzy sub-patterns.
func (e Extended) Compile(query, _, _ string) (Pattern, error) {
	terms, err := e.parseTerms(query)
	if err != nil {
		return nil, err
	}
	return &extendedPattern{source: query, terms: terms}, nil
}

func (e Extended) parseTerms(query string) ([]term, error) {
	caseSensitive := e.ForceCaseSensitive || (!e.ForceCaseInsensitive && hasUpper(query))
	fold := !caseSensitive

	fields := strings.Fields(query)
	terms := make([]term, 0, len(fields))

	for _, tok := range fields {
		negate := false
		if strings.HasPrefix(tok, "!") {
			negate = true
			tok = tok[1:]
		}
		if tok == "" {
			continue
		}

		var kind termKind
		text := tok

		switch {
		case len(tok) >= 2 && strings.HasPrefix(tok, "^") && strings.HasSuffix(tok, "$"):
			kind = termFullLine
			text = tok[1 : len(tok)-1]
		case strings.HasPrefix(tok, "^"):
			kind = termPrefix
			text = tok[1:]
		case strings.HasSuffix(tok, "$"):
			kind = termSuffix
			text = tok[:len(tok)-1]
		case strings.HasPrefix(tok, "'"):
			kind = termExact
			text = tok[1:]
		default:
			if e.Exact {
				kind = termExact
			} else {
				kind = termFuzzy
			}
			text = tok
		}

		// "A term of length 1 after stripping its prefix is ignored for
		// anchored forms" (spec §4.1) — an empty payload carries no
		// constraint, so the whole term is dropped.
		if text == "" {
			continue
		}

		t := term{kind: kind, negate: negate, text: text, caseFold: fold}
		if kind == termFuzzy {
			fz := Fuzzy{ForceCaseSensitive: !fold, ForceCaseInsensitive: fold}
			p, err := fz.Compile(text, "", "")
			if err != nil {
				return nil, err
			}
			t.fuzzy = p
		}
		terms = append(terms, t)
	}

	return terms, nil
}

// Match implements Matcher.Match: every positive term must match (its
// offsets union into the result); every negated term must not match.
func (e Extended) Match(line string, p Pattern) (bool, []corpus.Offset) {
	ep, ok := p.(*extendedPattern)
	if !ok {
		return false, nil
	}
	if len(ep.terms) == 0 {
		return true, nil
	}

	var offsets []corpus.Offset
	for _, t := range ep.terms {
		matched, offs := matchTerm(line, t)
		if t.negate {
			if matched {
				return false, nil
			}
			continue
		}
		if !matched {
			return false, nil
		}
		offsets = append(offsets, offs...)
	}
	return true, offsets
}

func matchTerm(line string, t term) (bool, []corpus.Offset) {
	switch t.kind {
	case termFuzzy:
		f := Fuzzy{}
		return f.Match(line, t.fuzzy)
	case termExact:
		return matchSubstring(line, t.text, t.caseFold)
	case termPrefix:
		return matchPrefix(line, t.text, t.caseFold)
	case termSuffix:
		return matchSuffix(line, t.text, t.caseFold)
	case termFullLine:
		return matchFullLine(line, t.text, t.caseFold)
	default:
		return false, nil
	}
}

func matchSubstring(line, text string, fold bool) (bool, []corpus.Offset) {
	haystack, needle := line, text
	if fold {
		haystack, needle = strings.ToLower(line), strings.ToLower(text)
	}
	idx := strings.Index(haystack, needle)
	if idx < 0 {
		return false, nil
	}
	return true, []corpus.Offset{{Begin: idx, End: idx + len(text)}}
}

func matchPrefix(line, text string, fold bool) (bool, []corpus.Offset) {
	haystack, needle := line, text
	if fold {
		haystack, needle = strings.ToLower(line), strings.ToLower(text)
	}
	if !strings.HasPrefix(haystack, needle) {
		return false, nil
	}
	return true, []corpus.Offset{{Begin: 0, End: len(text)}}
}

func matchSuffix(line, text string, fold bool) (bool, []corpus.Offset) {
	haystack, needle := line, text
	if fold {
		haystack, needle = strings.ToLower(line), strings.ToLower(text)
	}
	if !strings.HasSuffix(haystack, needle) {
		return false, nil
	}
	return true, []corpus.Offset{{Begin: len(line) - len(text), End: len(line)}}
}

func matchFullLine(line, text string, fold bool) (bool, []corpus.Offset) {
	haystack, needle := line, text
	if fold {
		haystack, needle = strings.ToLower(line), strings.ToLower(text)
	}
	if haystack != needle {
		return false, nil
	}
	return true, []corpus.Offset{{Begin: 0, End: len(line)}}
}

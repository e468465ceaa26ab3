package match

import (
	"sync"

	"github.com/dlclark/regexp2"

	"github.com/dshills/swiftpick/internal/corpus"
)

// fieldInfo is one tokenized field: its text and the byte offset at
// which it begins in the original line.
type fieldInfo struct {
	text  string
	start int
}

// NthFilter decorates any Matcher with spec §4.1's field-restricted
// matching ("nth"): the inner matcher is tried against each configured
// field in order, stopping at the first that matches, with offsets
// translated back to absolute line positions. Tokenization is memoized
// per line.
//
// Grounded on internal/project/search.FuzzySearcher's decorator shape
// (a Search that wraps scoring with a field-selection pass), adapted
// from file/path field selection to the spec's generic nth tokenizer.
type NthFilter struct {
	Inner Matcher

	// Fields holds 1-based field indices; negative counts from the end
	// (-1 is the last field).
	Fields []int

	// DelimPattern, if non-empty, is the user-supplied delimiter regex
	// source (spec §4.1). Empty means the AWK default tokenizer.
	DelimPattern string

	mu        sync.Mutex
	fieldRe   *regexp2.Regexp
	fieldErr  error
	compiled  bool
	lineCache map[string][]fieldInfo
}

func (n *NthFilter) Empty(query string) bool { return n.Inner.Empty(query) }

func (n *NthFilter) Compile(query, prefix, suffix string) (Pattern, error) {
	return n.Inner.Compile(query, prefix, suffix)
}

// Match tokenizes line (memoized) and tries each configured field index
// in order, returning the first field's translated match.
func (n *NthFilter) Match(line string, p Pattern) (bool, []corpus.Offset) {
	fields := n.tokenize(line)

	for _, idx := range n.Fields {
		i := idx
		if i < 0 {
			i = len(fields) + i + 1
		}
		if i < 1 || i > len(fields) {
			continue // out-of-range index contributes no match (spec boundary)
		}
		f := fields[i-1]
		ok, offs := n.Inner.Match(f.text, p)
		if !ok {
			continue
		}
		abs := make([]corpus.Offset, len(offs))
		for j, o := range offs {
			abs[j] = corpus.Offset{Begin: o.Begin + f.start, End: o.End + f.start}
		}
		return true, abs
	}
	return false, nil
}

func (n *NthFilter) tokenize(line string) []fieldInfo {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.lineCache == nil {
		n.lineCache = make(map[string][]fieldInfo)
	}
	if cached, ok := n.lineCache[line]; ok {
		return cached
	}

	var fields []fieldInfo
	if n.DelimPattern == "" {
		fields = tokenizeAWK(line)
	} else {
		fields = n.tokenizeDelimLocked(line)
	}
	n.lineCache[line] = fields
	return fields
}

// tokenizeDelimLocked compiles the §4.1 field pattern
// "(?:.*?DELIM)|(?:.+?$)" once (falling back to a literal-substring
// delimiter if it fails to compile — spec §7(d)) and repeatedly matches
// it to carve the line into fields.
func (n *NthFilter) tokenizeDelimLocked(line string) []fieldInfo {
	if !n.compiled {
		n.compiled = true
		n.fieldRe, n.fieldErr = regexp2.Compile("(?:.*?"+n.DelimPattern+")|(?:.+?$)", regexp2.None)
		if n.fieldErr != nil {
			literal := escapeLiteralForRegex(n.DelimPattern)
			n.fieldRe, n.fieldErr = regexp2.Compile("(?:.*?"+literal+")|(?:.+?$)", regexp2.None)
		}
	}
	if n.fieldErr != nil || n.fieldRe == nil {
		return []fieldInfo{{text: line, start: 0}}
	}

	var out []fieldInfo
	m, _ := n.fieldRe.FindStringMatch(line)
	for m != nil {
		db := runeOffsetToByte(line, m.Index)
		de := runeOffsetToByte(line, m.Index+m.Length)
		if de <= db && db >= len(line) {
			break
		}
		out = append(out, fieldInfo{text: line[db:de], start: db})
		if de >= len(line) {
			break
		}
		next, _ := n.fieldRe.FindNextMatch(m)
		if next == nil || runeOffsetToByte(line, next.Index) < de {
			break
		}
		m = next
	}
	if len(out) == 0 {
		out = append(out, fieldInfo{text: line, start: 0})
	}
	return out
}

// tokenizeAWK implements the AWK-default tokenizer: leading whitespace
// is ignored, and each field is a non-whitespace run plus its trailing
// whitespace (so concatenating fields, plus the skipped leading
// whitespace, reconstructs the line exactly).
func tokenizeAWK(line string) []fieldInfo {
	i, n := 0, len(line)
	for i < n && isAWKSpace(line[i]) {
		i++
	}

	var out []fieldInfo
	for i < n {
		start := i
		for i < n && !isAWKSpace(line[i]) {
			i++
		}
		for i < n && isAWKSpace(line[i]) {
			i++
		}
		out = append(out, fieldInfo{text: line[start:i], start: start})
	}
	if len(out) == 0 {
		out = append(out, fieldInfo{text: "", start: 0})
	}
	return out
}

func isAWKSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

func escapeLiteralForRegex(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isRegexMetaByte(c) {
			b = append(b, '\\')
		}
		b = append(b, c)
	}
	return string(b)
}

func isRegexMetaByte(c byte) bool {
	switch c {
	case '.', '+', '*', '?', '(', ')', '|', '[', ']', '{', '}', '^', '$', '\\':
		return true
	default:
		return false
	}
}

package cache

import (
	"testing"

	"github.com/dshills/swiftpick/internal/corpus"
	"github.com/dshills/swiftpick/internal/match"
)

func TestResultCacheFlushAdvancesGeneration(t *testing.T) {
	c := NewResultCache()
	c.Set("ab", []corpus.Match{{Line: corpus.Candidate{Text: "abc"}}})

	if _, ok := c.Get("ab"); !ok {
		t.Fatalf("expected cached entry before flush")
	}
	gen := c.Generation()
	c.Flush()
	if c.Generation() != gen+1 {
		t.Fatalf("expected generation to advance on flush")
	}
	if _, ok := c.Get("ab"); ok {
		t.Fatalf("expected flush to clear cached entry")
	}
}

func TestResultCacheSeedPrefix(t *testing.T) {
	c := NewResultCache()
	want := []corpus.Match{{Line: corpus.Candidate{Text: "abc"}}}
	c.Set("ab", want)

	matches, seedLen, ok := c.SeedPrefix("abc")
	if !ok {
		t.Fatalf("expected a prefix seed")
	}
	if seedLen != 2 {
		t.Fatalf("expected seed length 2, got %d", seedLen)
	}
	if len(matches) != len(want) {
		t.Fatalf("unexpected seed matches")
	}
}

func TestResultCacheSeedSuffix(t *testing.T) {
	c := NewResultCache()
	want := []corpus.Match{{Line: corpus.Candidate{Text: "xyz"}}}
	c.Set("yz", want)

	matches, seedLen, ok := c.SeedSuffix("xyz")
	if !ok {
		t.Fatalf("expected a suffix seed")
	}
	if seedLen != 2 {
		t.Fatalf("expected seed length 2, got %d", seedLen)
	}
	if len(matches) != len(want) {
		t.Fatalf("unexpected seed matches")
	}
}

func TestResultCacheNoSeedWhenNothingCached(t *testing.T) {
	c := NewResultCache()
	if _, _, ok := c.SeedPrefix("abc"); ok {
		t.Fatalf("expected no prefix seed on empty cache")
	}
	if _, _, ok := c.SeedSuffix("abc"); ok {
		t.Fatalf("expected no suffix seed on empty cache")
	}
}

func TestBestSeedPicksSmaller(t *testing.T) {
	small := []corpus.Match{{}}
	large := []corpus.Match{{}, {}, {}}

	got, ok := BestSeed(large, true, small, true)
	if !ok || len(got) != 1 {
		t.Fatalf("expected smaller (suffix) seed to win, got %d", len(got))
	}

	got2, ok := BestSeed(nil, false, small, true)
	if !ok || len(got2) != 1 {
		t.Fatalf("expected suffix seed when prefix missing")
	}

	_, ok3 := BestSeed(nil, false, nil, false)
	if ok3 {
		t.Fatalf("expected no seed when neither side cached")
	}
}

func TestPatternCacheLRUEviction(t *testing.T) {
	pc := NewPatternCache(2)
	f := match.Fuzzy{}

	p1, _ := f.Compile("a", "", "")
	p2, _ := f.Compile("b", "", "")
	p3, _ := f.Compile("c", "", "")

	pc.Set("a", p1)
	pc.Set("b", p2)
	pc.Set("c", p3) // evicts "a" (least recently used)

	if _, ok := pc.Get("a"); ok {
		t.Fatalf("expected 'a' evicted")
	}
	if _, ok := pc.Get("b"); !ok {
		t.Fatalf("expected 'b' retained")
	}
	if _, ok := pc.Get("c"); !ok {
		t.Fatalf("expected 'c' retained")
	}
}

func TestTrimIncompleteToken(t *testing.T) {
	cases := []struct{ in, want string }{
		{"foo bar", "foo "},
		{"foo", ""},
		{"foo bar baz", "foo bar "},
		{"", ""},
	}
	for _, c := range cases {
		if got := TrimIncompleteToken(c.in); got != c.want {
			t.Fatalf("TrimIncompleteToken(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

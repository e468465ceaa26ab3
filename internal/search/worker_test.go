package search

import (
	"strings"
	"testing"
	"time"

	"github.com/dshills/swiftpick/internal/bus"
	"github.com/dshills/swiftpick/internal/corpus"
	"github.com/dshills/swiftpick/internal/match"
	"github.com/dshills/swiftpick/internal/match/cache"
	"github.com/dshills/swiftpick/internal/source"
)

// TestWorkerFuzzySmartCase exercises spec scenario S1: corpus
// ["Makefile","main.c","README"], query "mc" should select only
// "main.c".
func TestWorkerFuzzySmartCase(t *testing.T) {
	b := bus.New()
	reader := source.NewReader(b)
	w := NewWorker(b, match.Fuzzy{}, reader)

	stop := make(chan struct{})
	go w.Run(stop)
	defer close(stop)

	_ = reader.ReadFrom(strings.NewReader("Makefile\nmain.c\nREADME\n"))
	waitForCount(t, w, 3)

	b.Emit(bus.KindKey, QuerySnapshot{Text: "mc", Sequence: 1})
	waitForResults(t, w)

	results := w.Results.Load()
	if len(results) != 1 || results[0].Line.Text != "main.c" {
		t.Fatalf("expected only main.c to match, got %+v", results)
	}
}

func TestWorkerEmptyQueryReturnsArrivalOrder(t *testing.T) {
	b := bus.New()
	reader := source.NewReader(b)
	w := NewWorker(b, match.Fuzzy{}, reader)

	stop := make(chan struct{})
	go w.Run(stop)
	defer close(stop)

	_ = reader.ReadFrom(strings.NewReader("one\ntwo\nthree\n"))
	waitForCount(t, w, 3)

	results := w.Results.Load()
	want := []string{"one", "two", "three"}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, line := range want {
		if results[i].Line.Text != line {
			t.Fatalf("expected arrival order, got %+v", results)
		}
		if len(results[i].Offsets) != 0 {
			t.Fatalf("expected empty offsets for empty query, got %+v", results[i])
		}
	}
}

// TestWorkerSeedLinesUsesCachedPrefix exercises spec §4.2's
// prefix-reuse: a cached shorter prefix's result list becomes the scan
// universe for a longer query instead of rescanning the corpus.
func TestWorkerSeedLinesUsesCachedPrefix(t *testing.T) {
	w := &Worker{resultCache: cache.NewResultCache()}
	w.resultCache.Set("mai", []corpus.Match{{Line: corpus.Candidate{Text: "main.c"}}})

	lines, ok := w.seedLines(QuerySnapshot{Text: "main", CursorX: 4})
	if !ok {
		t.Fatalf("expected a prefix seed hit for cached %q", "mai")
	}
	if len(lines) != 1 || lines[0].Text != "main.c" {
		t.Fatalf("expected seed universe from the cached prefix, got %+v", lines)
	}
}

// TestWorkerSeedLinesPicksSmallerOfPrefixAndSuffix exercises §4.2's
// "pick the smaller of the two seeds" rule.
func TestWorkerSeedLinesPicksSmallerOfPrefixAndSuffix(t *testing.T) {
	w := &Worker{resultCache: cache.NewResultCache()}
	// The prefix walk for "ma" starts one rune short, at "m".
	w.resultCache.Set("m", []corpus.Match{
		{Line: corpus.Candidate{Text: "main.c"}},
		{Line: corpus.Candidate{Text: "makefile"}},
	})
	w.resultCache.Set("c", []corpus.Match{
		{Line: corpus.Candidate{Text: "main.c"}},
	})

	lines, ok := w.seedLines(QuerySnapshot{Text: "mac", CursorX: 2})
	if !ok {
		t.Fatalf("expected a seed hit")
	}
	if len(lines) != 1 || lines[0].Text != "main.c" {
		t.Fatalf("expected the smaller suffix seed to win, got %+v", lines)
	}
}

// TestWorkerSeedLinesTrimsIncompleteTokenInExtendedMode exercises
// §4.2's "trims the prefix text by removing the final token fragment"
// rule for extended mode: an in-progress term must not anchor a seed.
func TestWorkerSeedLinesTrimsIncompleteTokenInExtendedMode(t *testing.T) {
	w := &Worker{Matcher: match.Extended{}, resultCache: cache.NewResultCache()}
	w.resultCache.Set("foo ", []corpus.Match{{Line: corpus.Candidate{Text: "foobar"}}})

	lines, ok := w.seedLines(QuerySnapshot{Text: "foo ba", CursorX: 6})
	if !ok {
		t.Fatalf("expected the trimmed prefix %q to hit the cached seed", "foo ")
	}
	if len(lines) != 1 || lines[0].Text != "foobar" {
		t.Fatalf("expected seed universe from %q, got %+v", "foo ", lines)
	}
}

// TestWorkerSeedLinesUnwrapsNthFilter confirms the extended-mode
// trimming rule still applies when Extended is wrapped by NthFilter.
func TestWorkerSeedLinesUnwrapsNthFilter(t *testing.T) {
	w := &Worker{Matcher: &match.NthFilter{Inner: match.Extended{}}, resultCache: cache.NewResultCache()}
	w.resultCache.Set("foo ", []corpus.Match{{Line: corpus.Candidate{Text: "foobar"}}})

	if _, ok := w.seedLines(QuerySnapshot{Text: "foo ba", CursorX: 6}); !ok {
		t.Fatalf("expected trimming to unwrap NthFilter down to Extended")
	}
}

func TestWorkerSeedLinesNoHitFallsBackToFullScan(t *testing.T) {
	w := &Worker{resultCache: cache.NewResultCache()}
	if _, ok := w.seedLines(QuerySnapshot{Text: "zzz", CursorX: 3}); ok {
		t.Fatalf("expected no seed hit against an empty cache")
	}
}

func TestChunkCandidatesSplitsAndPreservesOrder(t *testing.T) {
	lines := make([]corpus.Candidate, 5)
	for i := range lines {
		lines[i] = corpus.Candidate{Text: string(rune('a' + i))}
	}

	chunks := chunkCandidates(lines, 2)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks of size <=2, got %d", len(chunks))
	}

	var flat []string
	for _, c := range chunks {
		for _, l := range c {
			flat = append(flat, l.Text)
		}
	}
	want := []string{"a", "b", "c", "d", "e"}
	for i, w := range want {
		if flat[i] != w {
			t.Fatalf("expected order preserved, got %v", flat)
		}
	}
}

func TestProgressPercentClampsToHundred(t *testing.T) {
	if got := progressPercent(5, 0); got != 100 {
		t.Fatalf("expected 100%% for a zero-size universe, got %d", got)
	}
	if got := progressPercent(150, 100); got != 100 {
		t.Fatalf("expected clamping above 100%%, got %d", got)
	}
	if got := progressPercent(25, 100); got != 25 {
		t.Fatalf("expected 25%%, got %d", got)
	}
}

// TestWorkerProgressResetsAfterCycle exercises the OnProgress/Progress
// wiring's reset half: a cycle too fast to ever cross progressAfter
// must still leave Progress at 0 afterward, not some stale reading from
// a prior cycle.
func TestWorkerProgressResetsAfterCycle(t *testing.T) {
	b := bus.New()
	reader := source.NewReader(b)
	w := NewWorker(b, match.Fuzzy{}, reader)

	var calls int
	w.OnProgress = func(int) { calls++ }

	stop := make(chan struct{})
	go w.Run(stop)
	defer close(stop)

	_ = reader.ReadFrom(strings.NewReader("Makefile\nmain.c\nREADME\n"))
	waitForCount(t, w, 3)

	b.Emit(bus.KindKey, QuerySnapshot{Text: "mc", Sequence: 1})
	waitForResults(t, w)

	if got := w.Progress.Load(); got != 0 {
		t.Fatalf("expected Progress reset to 0 after a fast cycle, got %d", got)
	}
	if calls != 0 {
		t.Fatalf("expected OnProgress not to fire for a cycle well under progressAfter, got %d calls", calls)
	}
}

func waitForCount(t *testing.T, w *Worker, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if w.Count.Load() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("count never reached %d, stuck at %d", want, w.Count.Load())
}

func waitForResults(t *testing.T, w *Worker) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if res := w.Results.Load(); len(res) == 1 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("results never narrowed to one match")
}

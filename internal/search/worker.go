// Package search implements the Searcher (T2, spec §4.4): the single
// consumer of the event bus that re-matches the accumulated corpus on
// every `new` or `key` event, with per-batch pre-emption and an
// exponential backoff between non-user-initiated cycles.
//
// Grounded on github.com/dshills/keystorm's internal/input/fuzzy/async.go
// worker-pool shape (goroutine plus context.CancelFunc-based
// cancellation over chunked scans) for the concurrency idiom, collapsed
// from N parallel workers down to the spec's single consumer thread
// with per-batch cancellation checks (§5 "Pre-emption").
package search

import (
	"time"

	"github.com/dshills/swiftpick/internal/atomicx"
	"github.com/dshills/swiftpick/internal/bus"
	"github.com/dshills/swiftpick/internal/corpus"
	"github.com/dshills/swiftpick/internal/match"
	"github.com/dshills/swiftpick/internal/match/cache"
)

// QuerySnapshot is the (text, cursor_x) pair a `key` event carries.
type QuerySnapshot struct {
	Text     string
	CursorX  int
	Sequence uint64 // monotonically increasing, used for pre-emption ordering
}

const (
	sortLimitDefault = 1000
	backoffStart     = 20 * time.Millisecond
	backoffCap       = 200 * time.Millisecond
	progressAfter    = 500 * time.Millisecond

	// seedChunkSize bounds how many seed-universe lines are scanned
	// between preemption checks, mirroring the per-batch check the
	// unseeded path gets for free from corpus.Batches().
	seedChunkSize = 2048
)

// PendingSource is the minimal surface the Worker needs from the
// Reader: take whatever lines have accumulated since the last call.
type PendingSource interface {
	Take() []corpus.Candidate
}

// Worker is the Searcher: one goroutine running the spec §4.4 cycle.
type Worker struct {
	Bus     *bus.Bus
	Matcher match.Matcher
	Reader  PendingSource

	// SortLimit caps result length eligible for ranked sort; 0 means the
	// spec default of 1000. Sort disabled entirely is expressed by
	// SortDisabled.
	SortLimit    int
	SortDisabled bool

	// Published state, readable by the UI loop without touching the bus.
	Results *atomicx.Cell[[]corpus.Match]
	Count   *atomicx.Cell[int]
	Spinner *atomicx.Cell[int]

	// OnProgress is called with a 0-100 percentage during a long match
	// pass (spec §4.4 step 5's "periodically publish a progress
	// percentage"). May be nil; Progress is updated regardless, for
	// callers (the status line) that prefer to poll rather than hook.
	OnProgress func(percent int)

	// Progress is the last published percentage of the match cycle in
	// flight, reset to 0 whenever a cycle returns (including the
	// cache-hit/empty-query fast paths) so a finished cycle doesn't leave
	// a stale percentage for the status line to draw.
	Progress *atomicx.Cell[int]

	// OnPublish is called after every Results publish, including the
	// empty-query and cache-hit fast paths. Used by the select-1/exit-0
	// pre-screen callback (spec §6) to react to a published result set
	// without polling. May be nil.
	OnPublish func()

	query       QuerySnapshot
	corpus      corpus.Corpus
	resultCache *cache.ResultCache
	patterns    *cache.PatternCache
}

// NewWorker wires a Worker with fresh caches and zeroed atomic cells.
func NewWorker(b *bus.Bus, m match.Matcher, reader PendingSource) *Worker {
	return &Worker{
		Bus:         b,
		Matcher:     m,
		Reader:      reader,
		Results:     atomicx.NewCell[[]corpus.Match](nil),
		Count:       atomicx.NewCell(0),
		Spinner:     atomicx.NewCell(0),
		Progress:    atomicx.NewCell(0),
		resultCache: cache.NewResultCache(),
		patterns:    cache.NewPatternCache(256),
	}
}

// Run executes the §4.4 cycle until the bus is closed. stop channel,
// if non-nil, causes Run to return promptly when closed.
func (w *Worker) Run(stop <-chan struct{}) {
	backoff := backoffStart
	for {
		select {
		case <-stop:
			return
		default:
		}

		events := w.Bus.Wait()
		if events == nil {
			return // bus closed, nothing pending
		}

		userInitiated := w.absorb(events)
		if userInitiated {
			backoff = backoffStart
		}

		if w.corpus.Count() > 0 {
			w.runMatchCycle()
		}

		if !userInitiated {
			time.Sleep(backoff)
			backoff *= 2
			if backoff > backoffCap {
				backoff = backoffCap
			}
		}
	}
}

// absorb implements steps 2-4: snapshot+clear already happened in
// Bus.Wait; this applies whatever kinds were present. Returns true if
// a `key` event fired (spec: "User-initiated cycles ... do not sleep").
func (w *Worker) absorb(events map[bus.Kind]any) bool {
	userInitiated := false

	if _, ok := events[bus.KindNewLines]; ok {
		lines := w.Reader.Take()
		if len(lines) > 0 {
			w.corpus.Append(corpus.NewBatch(lines))
		}
		w.Count.Store(w.corpus.Count())
		w.Spinner.Store(w.Spinner.Load() + 1)
		w.resultCache.Flush()
	}

	if v, ok := events[bus.KindKey]; ok {
		if q, ok := v.(QuerySnapshot); ok {
			w.query = q
			userInitiated = true
		}
	}

	return userInitiated
}

// runMatchCycle implements step 5-6: run the matcher over the scan
// universe with pre-emption, then rank or reverse, then publish. The
// scan universe is either a §4.2 seed (a shorter cached query's result
// list, when one narrows the search) or, failing that, the whole
// corpus batch by batch.
func (w *Worker) runMatchCycle() {
	query := w.query
	start := time.Now()
	lastProgress := start
	defer w.Progress.Store(0)

	if w.Matcher.Empty(query.Text) {
		all := w.corpus.All()
		w.publish(match.EmptyQueryMatches(all))
		return
	}

	if cached, ok := w.resultCache.Get(query.Text); ok {
		w.publish(cached)
		return
	}

	pattern, err := w.compilePattern(query.Text)
	if err != nil {
		w.publish(nil)
		return
	}

	chunks, total := w.scanChunks(query)

	var all []corpus.Match
	var batchSizes []int
	for _, lines := range chunks {
		if w.preempted(query.Sequence) {
			return // abort and let the next Wait() pick up the fresher key
		}

		scanned := match.MatchLines(w.Matcher, pattern, lines)
		all = append(all, scanned...)
		batchSizes = append(batchSizes, len(scanned))

		if time.Since(start) > progressAfter && time.Since(lastProgress) > 100*time.Millisecond {
			lastProgress = time.Now()
			pct := progressPercent(len(all), total)
			w.Progress.Store(pct)
			if w.OnProgress != nil {
				w.OnProgress(pct)
			}
		}
	}

	limit := w.SortLimit
	if limit == 0 {
		limit = sortLimitDefault
	}
	if !w.SortDisabled && len(all) <= limit {
		SortByRank(all)
	} else {
		all = ReverseBatches(batchSizes, all)
	}

	w.resultCache.Set(query.Text, all)
	w.publish(all)
}

// scanChunks implements spec §4.2's seed-reuse: before falling back to
// a full rescan, try to seed from a shorter cached query's result list
// (the §4.2 "prefix-reuse" cache), which narrows the scan universe to
// a strict subset of the corpus. Returns the chunks to scan in order
// (each re-checked for pre-emption between batches) and the total line
// count the seed or corpus represents, for progress reporting.
func (w *Worker) scanChunks(query QuerySnapshot) (chunks [][]corpus.Candidate, total int) {
	if seed, ok := w.seedLines(query); ok {
		return chunkCandidates(seed, seedChunkSize), len(seed)
	}

	batches := w.corpus.Batches()
	chunks = make([][]corpus.Candidate, len(batches))
	for i, b := range batches {
		chunks[i] = b.Lines()
	}
	return chunks, w.corpus.Count()
}

// seedLines implements the §4.2 prefix/suffix seed search: walk
// query[0:cursor_x] down to a cached shorter prefix, and
// query[cursor_x:] up to a cached shorter suffix, then pick the
// smaller cached result list as the seed universe (matches for a
// longer fuzzy query are a subset of matches for a strict prefix, and
// analogously for a suffix). Extended mode trims an in-progress final
// token off the prefix and tries the trimmed prefix itself before
// walking, so seeding never anchors on a not-yet-completed `^`/`$`/`!`
// term.
func (w *Worker) seedLines(query QuerySnapshot) ([]corpus.Candidate, bool) {
	runes := []rune(query.Text)
	cursor := query.CursorX
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}
	prefix := string(runes[:cursor])
	suffix := string(runes[cursor:])

	var prefixMatches []corpus.Match
	prefixOK := false
	if isExtended(w.Matcher) {
		prefix = cache.TrimIncompleteToken(prefix)
		// The trimmed prefix ends on a complete token, so it is itself a
		// valid seed key before the shorter-prefix walk.
		if prefix != "" {
			prefixMatches, prefixOK = w.resultCache.Get(prefix)
		}
	}

	if !prefixOK {
		prefixMatches, _, prefixOK = w.resultCache.SeedPrefix(prefix)
	}
	suffixMatches, _, suffixOK := w.resultCache.SeedSuffix(suffix)
	seed, ok := cache.BestSeed(prefixMatches, prefixOK, suffixMatches, suffixOK)
	if !ok {
		return nil, false
	}

	lines := make([]corpus.Candidate, len(seed))
	for i, m := range seed {
		lines[i] = m.Line
	}
	return lines, true
}

// isExtended reports whether m is one of the extended variants,
// unwrapping an NthFilter decorator to inspect its Inner matcher. Spec
// §4.2's prefix-trimming rule applies only to extended mode's
// token-based terms, not the plain fuzzy matcher.
func isExtended(m match.Matcher) bool {
	for {
		switch v := m.(type) {
		case match.Extended:
			return true
		case *match.NthFilter:
			m = v.Inner
		default:
			return false
		}
	}
}

// chunkCandidates splits lines into chunks of at most size, preserving
// order, so a large seed universe still gets periodic pre-emption
// checks during a scan.
func chunkCandidates(lines []corpus.Candidate, size int) [][]corpus.Candidate {
	if size <= 0 || len(lines) <= size {
		return [][]corpus.Candidate{lines}
	}
	out := make([][]corpus.Candidate, 0, (len(lines)+size-1)/size)
	for i := 0; i < len(lines); i += size {
		end := i + size
		if end > len(lines) {
			end = len(lines)
		}
		out = append(out, lines[i:end])
	}
	return out
}

func (w *Worker) compilePattern(query string) (match.Pattern, error) {
	if p, ok := w.patterns.Get(query); ok {
		return p, nil
	}
	p, err := w.Matcher.Compile(query, query, "")
	if err != nil {
		return nil, err
	}
	w.patterns.Set(query, p)
	return p, nil
}

// preempted implements "Before finishing each batch, re-check the
// event bus; if a fresher key arrived, abort and restart at step 2."
func (w *Worker) preempted(currentSeq uint64) bool {
	v, ok := w.Bus.Peek(bus.KindKey)
	if !ok {
		return false
	}
	q, ok := v.(QuerySnapshot)
	return ok && q.Sequence > currentSeq
}

func (w *Worker) publish(matches []corpus.Match) {
	w.Results.Store(matches)
	if w.OnPublish != nil {
		w.OnPublish()
	}
}

func progressPercent(scanned, total int) int {
	if total == 0 {
		return 100
	}
	pct := scanned * 100 / total
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Package corpus holds the immutable candidate/batch data model that the
// Reader, Searcher and UI loop share (see spec §3 DATA MODEL).
package corpus

// Candidate is a single input line as read from the source, with its
// trailing newline stripped. Candidates are immutable once created and
// retain their arrival order.
type Candidate struct {
	// Text is the line content.
	Text string
	// Seq is the 0-based arrival index across the whole input stream.
	// Unranked ordering comes from batch position, not from Seq.
	Seq int
}

// Offset is a half-open byte range [Begin, End) into a Candidate's Text
// identifying a highlighted match region.
type Offset struct {
	Begin, End int
}

// Match pairs a candidate line with the offsets a query matched inside it.
// Offsets may be empty (e.g. an empty query matches everything with no
// highlight).
type Match struct {
	Line    Candidate
	Offsets []Offset
}

// Batch is an ordered, append-only group of candidate lines published
// together by the Reader between two Searcher pickups. Once returned by
// NewBatch a Batch is never mutated.
type Batch struct {
	lines []Candidate
}

// NewBatch freezes lines into a Batch. The caller must not reuse the
// backing slice afterward.
func NewBatch(lines []Candidate) Batch {
	return Batch{lines: lines}
}

// Lines returns the batch's candidates in arrival order.
func (b Batch) Lines() []Candidate { return b.lines }

// Len returns the number of candidates in the batch.
func (b Batch) Len() int { return len(b.lines) }

// Corpus is the ordered list of batches accumulated so far. It is owned
// by the Searcher; batches already appended are never mutated, so reads
// over a snapshot of the batch slice require no further locking.
type Corpus struct {
	batches []Batch
	count   int
}

// Append adds a batch to the corpus and returns the new total line count.
func (c *Corpus) Append(b Batch) int {
	c.batches = append(c.batches, b)
	c.count += b.Len()
	return c.count
}

// Count returns the total number of candidate lines accumulated (invariant:
// monotonically increasing, spec §3 invariant 3).
func (c *Corpus) Count() int { return c.count }

// Batches returns the accumulated batches in arrival order. The returned
// slice must be treated as read-only.
func (c *Corpus) Batches() []Batch { return c.batches }

// Generation is a cheap identity for "the currently accumulated batch
// sequence" (spec §3's match-cache key component): it is simply the
// number of batches appended, since batches are never removed or mutated.
func (c *Corpus) Generation() int { return len(c.batches) }

// All returns every candidate across all batches in arrival order.
func (c *Corpus) All() []Candidate {
	out := make([]Candidate, 0, c.count)
	for _, b := range c.batches {
		out = append(out, b.Lines()...)
	}
	return out
}

// Package source implements the Reader (T1, spec §4.3): a dedicated
// goroutine that reads candidate lines from stdin, or — when stdin is
// a terminal — spawns the configured default command (or a find-style
// file walk) and reads its stdout instead.
//
// Grounded on the absence of an equivalent in
// github.com/dshills/keystorm (an editor reads files, not a line
// stream), so the goroutine/channel-less accumulate-then-signal shape
// here follows spec §4.3 directly; the subprocess/argv-splitting idiom
// is grounded on google/shlex, the one pack dependency built exactly
// for POSIX-style command splitting.
package source

import (
	"bufio"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/shlex"
	"github.com/mattn/go-isatty"

	"github.com/dshills/swiftpick/internal/bus"
	"github.com/dshills/swiftpick/internal/corpus"
)

const maxLineBytes = 1 << 20 // 1MB, per spec §4.3

// Reader owns the pending-line buffer and emits bus events as lines
// arrive.
type Reader struct {
	Bus *bus.Bus

	mu      sync.Mutex
	pending []corpus.Candidate
	nextSeq int
}

// NewReader creates a Reader posting events onto b.
func NewReader(b *bus.Bus) *Reader {
	return &Reader{Bus: b}
}

// Take atomically removes and returns every line accumulated since the
// last call (spec §4.4 step 3: "move the Reader's pending buffer into
// the Searcher's list of batches").
func (r *Reader) Take() []corpus.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) == 0 {
		return nil
	}
	out := r.pending
	r.pending = nil
	return out
}

func (r *Reader) append(line string) {
	r.mu.Lock()
	r.pending = append(r.pending, corpus.Candidate{Text: line, Seq: r.nextSeq})
	r.nextSeq++
	r.mu.Unlock()
	r.Bus.Emit(bus.KindNewLines, true)
}

// Run selects a source per spec §4.3 and blocks until EOF, then posts
// `loaded` exactly once. Run is meant to be launched as its own
// goroutine (T1).
func (r *Reader) Run(defaultCommand string) error {
	defer r.Bus.Emit(bus.KindLoaded, true)

	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return r.ReadFrom(os.Stdin)
	}

	if defaultCommand == "" {
		defaultCommand = os.Getenv("SWIFTPICK_DEFAULT_COMMAND")
	}
	if defaultCommand != "" {
		return r.runCommand(defaultCommand)
	}
	return r.walkDefault()
}

// ReadFrom scans rd line-by-line into the pending buffer. Exposed
// directly (beyond Run's internal use) so tests and filter-mode
// callers can feed an arbitrary io.Reader without a real stdin.
func (r *Reader) ReadFrom(rd io.Reader) error {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		r.append(scanner.Text())
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// runCommand spawns the user's $SWIFTPICK_DEFAULT_COMMAND (POSIX-split
// via shlex) and reads its stdout as the candidate stream.
func (r *Reader) runCommand(command string) error {
	args, err := shlex.Split(command)
	if err != nil || len(args) == 0 {
		return r.walkDefault()
	}

	cmd := exec.Command(args[0], args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return r.walkDefault()
	}
	if err := r.ReadFrom(stdout); err != nil {
		_ = cmd.Wait()
		return err
	}
	return cmd.Wait()
}

// walkDefault implements the find-style fallback from spec §6:
// `find * -path '*/.*' -prune -o -type f -print -o -type l -print`.
func (r *Reader) walkDefault() error {
	return filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // per-entry errors are skipped, not fatal
		}
		if path == "." {
			return nil
		}
		if d.IsDir() && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if d.Type().IsRegular() || d.Type()&fs.ModeSymlink != 0 {
			r.append(strings.TrimPrefix(path, "./"))
		}
		return nil
	})
}

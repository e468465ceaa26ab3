// Package app provides the main application structure and coordination
// for swiftpick: it wires the Reader, Searcher, render queue and UI
// loop together, owns the screen driver's lifecycle, and implements
// the pre-screen select-1/exit-0 short-circuit and filter mode.
//
// Grounded on github.com/dshills/keystorm's internal/app.Application
// (the same New/bootstrap/Run/Shutdown lifecycle shape and the
// Options/Logger/error-taxonomy conventions it carries), adapted from
// an editor supervising documents/LSP/plugins down to a finder
// supervising four worker goroutines over one corpus.
package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/swiftpick/internal/bus"
	"github.com/dshills/swiftpick/internal/cliopts"
	"github.com/dshills/swiftpick/internal/corpus"
	"github.com/dshills/swiftpick/internal/match"
	"github.com/dshills/swiftpick/internal/render"
	"github.com/dshills/swiftpick/internal/screen"
	"github.com/dshills/swiftpick/internal/search"
	"github.com/dshills/swiftpick/internal/source"
	"github.com/dshills/swiftpick/internal/ui"
)

// Application is the central coordinator for swiftpick's four
// goroutines (spec §5: Reader/T1, Searcher/T2, render-queue drain/T3,
// UI loop/T4).
type Application struct {
	opts   cliopts.Options
	logger *Logger

	bus     *bus.Bus
	reader  *source.Reader
	worker  *search.Worker
	queue   *render.Queue
	driver  screen.Driver
	matcher match.Matcher

	running atomic.Bool
	done    chan struct{}
}

// New builds an Application from already-parsed CLI options. It does
// not touch the terminal or any I/O beyond constructing in-memory
// components (bootstrap order mirrors the teacher's New/bootstrap
// split: cheap, side-effect-free construction first).
func New(opts cliopts.Options) (*Application, error) {
	app := &Application{
		opts: opts,
		done: make(chan struct{}),
	}
	app.logger = NewLogger(DefaultLoggerConfig())

	app.matcher = buildMatcher(opts)
	app.bus = bus.New()
	app.reader = source.NewReader(app.bus)
	app.worker = search.NewWorker(app.bus, app.matcher, app.reader)
	if opts.SortLimit > 0 {
		app.worker.SortLimit = opts.SortLimit
	}
	app.worker.SortDisabled = opts.SortDisabled
	app.queue = render.New()

	return app, nil
}

// buildMatcher assembles the Matcher variant chain spec §4.1
// describes: fuzzy or extended(-exact), optionally wrapped by the nth
// field-restriction decorator.
func buildMatcher(opts cliopts.Options) match.Matcher {
	var base match.Matcher
	if opts.Extended {
		base = match.Extended{
			Exact:                opts.ExtendedExact,
			ForceCaseSensitive:   opts.CaseMode == cliopts.CaseSensitive,
			ForceCaseInsensitive: opts.CaseMode == cliopts.CaseInsensitive,
		}
	} else {
		base = match.Fuzzy{
			ForceCaseSensitive:   opts.CaseMode == cliopts.CaseSensitive,
			ForceCaseInsensitive: opts.CaseMode == cliopts.CaseInsensitive,
		}
	}

	if len(opts.NthFields) == 0 {
		return base
	}
	return &match.NthFilter{
		Inner:        base,
		Fields:       opts.NthFields,
		DelimPattern: opts.Delimiter,
	}
}

// Run executes swiftpick end to end, returning the selected lines (or
// nil) and an error classified per spec §7's exit-code taxonomy:
// ErrAborted -> 1, ErrNoSource -> 1, anything else -> 2.
//
// T1 (reader), T2 (searcher) and, once the screen is up, T3
// (render-queue drain) run under an errgroup.Group: a panic in any of
// them is recovered into an error (recoverToError) instead of crashing
// the process, the group's derived context cancels the others, and
// the first error is re-raised here on the UI thread after runScreen's
// deferred driver.Close() has already restored the terminal (spec
// §7(e)).
func (app *Application) Run() ([]string, error) {
	if !app.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if app.opts.FilterMode {
		return app.runFilter()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	loaded := &atomic.Bool{}
	g.Go(func() error {
		defer loaded.Store(true)
		return recoverToError(func() error { return app.reader.Run(app.opts.DefaultCommand) })
	})

	stopWorker := make(chan struct{})
	var stopOnce sync.Once
	g.Go(func() error {
		return recoverToError(func() error {
			app.worker.Run(stopWorker)
			return nil
		})
	})
	go func() {
		<-gctx.Done()
		stopOnce.Do(func() { close(stopWorker) })
		app.bus.Close()
		app.queue.Close()
	}()

	if app.opts.InitialQuery != "" {
		app.bus.Emit(bus.KindKey, search.QuerySnapshot{Text: app.opts.InitialQuery, CursorX: len([]rune(app.opts.InitialQuery))})
	}

	if app.opts.Select1 || app.opts.Exit0 {
		lines, exit, ok := app.waitEarlyDecision(gctx, loaded)
		cancel()
		switch {
		case ok:
			app.logger.WithComponent("app").Info("auto-exiting via select-1/exit-0, %d line(s)", len(lines))
			if werr := g.Wait(); werr != nil {
				app.logger.WithComponent("app").Error("worker failure during early decision: %v", werr)
			}
			return lines, exit
		case gctx.Err() != nil:
			return nil, g.Wait()
		case closed(app.done):
			app.logger.WithComponent("app").Warn("shutdown requested before the pre-screen decision settled")
			_ = g.Wait()
			return nil, ErrAborted
		}
	}

	lines, err := app.runScreen(gctx, g)
	cancel()
	if werr := g.Wait(); werr != nil {
		if err == nil {
			err = werr
		} else {
			app.logger.WithComponent("app").Error("worker failure alongside %v: %v", err, werr)
		}
	}
	if err == nil && closed(app.done) {
		err = ErrAborted
	}
	return lines, err
}

// closed reports whether ch has already been closed, without blocking.
func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

type earlyDecision struct {
	shouldExit bool
	lines      []string
}

// waitEarlyDecision implements spec §6's "select-1"/"exit-0": a
// pre-screen callback consulted after every Searcher publish once the
// corpus is fully loaded. ok is false when the load settles on neither
// condition (including because ctx was cancelled by a T1/T2 failure),
// meaning the caller should fall through to the screen or, if ctx is
// the reason, propagate that failure instead.
func (app *Application) waitEarlyDecision(ctx context.Context, loaded *atomic.Bool) (lines []string, exit error, ok bool) {
	decided := make(chan earlyDecision, 1)
	app.worker.OnPublish = func() {
		if !loaded.Load() {
			return
		}
		results := app.worker.Results.Load()
		var d earlyDecision
		switch {
		case app.opts.Select1 && len(results) == 1:
			d = earlyDecision{shouldExit: true, lines: []string{results[0].Line.Text}}
		case app.opts.Exit0 && len(results) == 0:
			d = earlyDecision{shouldExit: true, lines: nil}
		default:
			d = earlyDecision{shouldExit: false}
		}
		select {
		case decided <- d:
		default:
		}
	}
	defer func() { app.worker.OnPublish = nil }()

	select {
	case d := <-decided:
		if d.shouldExit {
			return d.lines, nil, true
		}
		return nil, nil, false
	case <-ctx.Done():
		return nil, nil, false
	case <-app.done:
		return nil, nil, false
	}
}

// runScreen initializes the terminal and drives T3 (render-queue
// drain) and T4 (UI loop) until the user commits, aborts, or ctx is
// cancelled because T1/T2 (or T3 itself) failed. T3 runs under g so a
// panic draining the render queue is recovered and reported the same
// way as a reader/searcher failure; the caller (Run) reaps it via
// g.Wait() after this method returns and driver.Close() has restored
// the terminal.
func (app *Application) runScreen(ctx context.Context, g *errgroup.Group) ([]string, error) {
	driver, err := screen.NewTcellDriver()
	if err != nil {
		return nil, NewComponentError("screen", "create", err)
	}
	if err := driver.Init(); err != nil {
		return nil, NewComponentError("screen", "init", err)
	}
	driver.SetMouseEnabled(app.opts.Mouse)
	app.driver = driver
	defer driver.Close()
	app.logger.WithComponent("screen").Debug("terminal initialized, mouse=%v", app.opts.Mouse)

	loop := ui.NewLoop(driver, app.bus, app.worker.Results, app.worker.Spinner, app.worker.Count, app.opts.Multi)
	if app.opts.InitialQuery != "" {
		loop.Query.Text = app.opts.InitialQuery
		loop.Query.CursorX = len([]rune(app.opts.InitialQuery))
	}

	g.Go(func() error {
		return recoverToError(func() error {
			app.queue.Drain(func(cmd render.Command) { cmd(app.driver) })
			return nil
		})
	})
	defer app.queue.Close()

	redraw := func() {
		total := app.worker.Count.Load()
		app.queue.Push(render.Draw(render.ListFrame{
			Matches:       app.worker.Results.Load(),
			VCursor:       loop.VCursor,
			IsSelected:    loop.Selection.Has,
			Query:         loop.Query.Text,
			CursorX:       loop.Query.CursorX,
			Count:         len(app.worker.Results.Load()),
			Total:         total,
			Spinner:       app.worker.Spinner.Load(),
			MultiMode:     app.opts.Multi,
			SelectedCount: loop.Selection.Len(),
			Progress:      app.worker.Progress.Load(),
		}))
	}

	app.worker.OnPublish = redraw
	defer func() { app.worker.OnPublish = nil }()

	// Drive the §4.4 step 5 progress suffix: each percentage tick pushes
	// a fresh frame rather than waiting for the cycle's final publish, so
	// the status line actually updates mid-scan instead of only at the
	// end of it.
	app.worker.OnProgress = func(int) { redraw() }
	defer func() { app.worker.OnProgress = nil }()

	redraw()

	events := make(chan screen.Event)
	go func() {
		for {
			ev := driver.PollEvent()
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			// A T1-T3 failure cancelled the group; driver.Close() above
			// runs on return, restoring the terminal before Run's
			// g.Wait() re-raises the underlying error.
			return nil, nil
		case <-app.done:
			// Shutdown was requested (cmd/swiftpick's SIGINT/SIGTERM
			// handler); driver.Close() above restores the terminal, and
			// Run classifies this as ErrAborted once runScreen returns.
			return nil, nil
		case ev := <-events:
			outcome := loop.Step(ev)
			redraw()

			switch outcome {
			case ui.OutcomeCommit:
				return loop.Picks(), nil
			case ui.OutcomeAbort:
				return nil, ErrAborted
			}
		}
	}
}

// runFilter implements spec §6's `-f`/`--filter` scripting mode: read
// the whole corpus from stdin synchronously, match once against the
// given query, and print the results in rank order without ever
// touching the screen.
func (app *Application) runFilter() ([]string, error) {
	lines, err := app.runFilterFrom(os.Stdin)
	if err != nil {
		return nil, err
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return lines, nil
}

// runFilterFrom is runFilter's I/O-injected core, split out so tests
// can exercise the compile/match/rank pipeline without touching
// os.Stdin or os.Stdout.
func (app *Application) runFilterFrom(r io.Reader) ([]string, error) {
	rdr := source.NewReader(app.bus)
	if err := rdr.ReadFrom(r); err != nil {
		return nil, NewComponentError("source", "read", err)
	}
	lines := rdr.Take()

	var matches []corpus.Match
	if app.matcher.Empty(app.opts.FilterQuery) {
		matches = match.EmptyQueryMatches(lines)
	} else {
		pattern, err := app.matcher.Compile(app.opts.FilterQuery, app.opts.FilterQuery, "")
		if err != nil {
			return nil, NewOperationError("compile", app.opts.FilterQuery, err)
		}
		matches = match.MatchLines(app.matcher, pattern, lines)
		search.SortByRank(matches)
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Line.Text)
	}
	return out, nil
}

// Shutdown requests the Application stop at the next safe point.
// Background goroutines (T1-T4) have no graceful-shutdown protocol of
// their own per spec §6 ("background threads are terminated by
// process exit"); Shutdown only closes the done channel so a
// caller blocked on it unblocks.
func (app *Application) Shutdown() {
	select {
	case <-app.done:
	default:
		close(app.done)
	}
}

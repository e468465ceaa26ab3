// Package cliopts hand-rolls the argv parser spec §6 requires: short
// (`-x`), negated-short (`+i`), long (`--extended`), and
// `--long=value` forms, plus `$SWIFTPICK_DEFAULT_OPTS` pre-pended via
// POSIX shell splitting.
//
// The standard library's flag package supports none of fzf's `+short`
// negation form and treats `--opt=value` inconsistently with
// `-o value`; every pack example that needs this exact shape
// hand-rolls its own scanner rather than reaching for flag, so this
// does too (see DESIGN.md).
//
// Grounded on github.com/dshills/keystorm's cmd/keystorm/main.go for
// the overall `Options` + `parseFlags` → `run() int` shape, with the
// token scanner itself grounded on google/shlex's POSIX-splitting idea
// for $SWIFTPICK_DEFAULT_OPTS.
package cliopts

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// Options is the fully parsed command line, per spec §6's table.
type Options struct {
	Extended      bool // -x
	ExtendedExact bool // -e
	CaseMode      CaseMode
	NthFields     []int  // -n
	Delimiter     string // -d
	SortLimit     int    // -s N; 0 with SortDisabled=false means default 1000
	SortDisabled  bool   // +s
	Multi         bool   // -m
	InitialQuery  string // -q
	Select1       bool   // -1
	Exit0         bool   // -0
	FilterQuery   string // -f
	FilterMode    bool
	Mouse         bool // --mouse/--no-mouse, default true
	Black         bool // --black (parsed; no component reads it)
	Cycle         bool // -c/+c (parsed; no component reads it)
	TwoLine       bool // -2/+2 (parsed; no component reads it)

	DefaultCommand string
	Files          []string // trailing positional args, unused by a line-oriented finder but parsed for forward-compat
}

// CaseMode selects smart-case vs a forced mode (-i/+i, spec §6).
type CaseMode int

const (
	CaseSmart CaseMode = iota
	CaseInsensitive
	CaseSensitive
)

// Default returns spec's documented defaults.
func Default() Options {
	return Options{
		SortLimit: 1000,
		Mouse:     true,
	}
}

// ParseArgs parses argv (not including argv[0]), with
// $SWIFTPICK_DEFAULT_OPTS spliced in first per spec §6: "pre-pended to
// argv via POSIX shell splitting".
func ParseArgs(argv []string) (Options, error) {
	opts := Default()

	defaultOpts, err := shlex.Split(os.Getenv("SWIFTPICK_DEFAULT_OPTS"))
	if err != nil {
		return opts, fmt.Errorf("invalid $SWIFTPICK_DEFAULT_OPTS: %w", err)
	}
	all := append(defaultOpts, argv...)

	i := 0
	for i < len(all) {
		tok := all[i]
		consumed, err := applyToken(&opts, tok, all, i)
		if err != nil {
			return opts, err
		}
		i += consumed
	}
	return opts, nil
}

// applyToken consumes one or more tokens starting at all[i] and
// returns how many were consumed.
func applyToken(opts *Options, tok string, all []string, i int) (int, error) {
	switch {
	case tok == "-x" || tok == "--extended":
		opts.Extended = true
		return 1, nil
	case tok == "-e" || tok == "--extended-exact":
		opts.Extended = true
		opts.ExtendedExact = true
		return 1, nil
	case tok == "-i":
		opts.CaseMode = CaseInsensitive
		return 1, nil
	case tok == "+i":
		opts.CaseMode = CaseSensitive
		return 1, nil
	case tok == "-m" || tok == "--multi":
		opts.Multi = true
		return 1, nil
	case tok == "-1" || tok == "--select-1":
		opts.Select1 = true
		return 1, nil
	case tok == "-0" || tok == "--exit-0":
		opts.Exit0 = true
		return 1, nil
	case tok == "+s":
		opts.SortDisabled = true
		return 1, nil
	case tok == "-c" || tok == "+c":
		opts.Cycle = tok == "-c"
		return 1, nil
	case tok == "-2" || tok == "+2":
		opts.TwoLine = tok == "-2"
		return 1, nil
	case tok == "--black":
		opts.Black = true
		return 1, nil
	case tok == "--mouse":
		opts.Mouse = true
		return 1, nil
	case tok == "--no-mouse":
		opts.Mouse = false
		return 1, nil

	case tok == "-n":
		return takeValue(opts, all, i, parseNth)
	case strings.HasPrefix(tok, "-n"):
		return 1, parseNth(opts, tok[len("-n"):])
	case strings.HasPrefix(tok, "--nth="):
		return 1, parseNth(opts, tok[len("--nth="):])

	case tok == "-d":
		return takeValue(opts, all, i, func(o *Options, v string) error { o.Delimiter = v; return nil })
	case strings.HasPrefix(tok, "-d"):
		opts.Delimiter = tok[len("-d"):]
		return 1, nil
	case strings.HasPrefix(tok, "--delimiter="):
		opts.Delimiter = tok[len("--delimiter="):]
		return 1, nil

	case tok == "-s":
		return takeValue(opts, all, i, parseSort)
	case strings.HasPrefix(tok, "--sort="):
		return 1, parseSort(opts, tok[len("--sort="):])
	case strings.HasPrefix(tok, "-s"):
		return 1, parseSort(opts, tok[len("-s"):])

	case tok == "-q":
		return takeValue(opts, all, i, func(o *Options, v string) error { o.InitialQuery = v; return nil })
	case strings.HasPrefix(tok, "-q"):
		opts.InitialQuery = tok[len("-q"):]
		return 1, nil
	case strings.HasPrefix(tok, "--query="):
		opts.InitialQuery = tok[len("--query="):]
		return 1, nil

	case tok == "-f":
		return takeValue(opts, all, i, func(o *Options, v string) error {
			o.FilterQuery = v
			o.FilterMode = true
			return nil
		})
	case strings.HasPrefix(tok, "-f"):
		opts.FilterQuery = tok[len("-f"):]
		opts.FilterMode = true
		return 1, nil
	case strings.HasPrefix(tok, "--filter="):
		opts.FilterQuery = tok[len("--filter="):]
		opts.FilterMode = true
		return 1, nil

	case tok == "--":
		opts.Files = append(opts.Files, all[i+1:]...)
		return len(all) - i, nil

	case strings.HasPrefix(tok, "-") && tok != "-":
		return 1, fmt.Errorf("unknown option: %s", tok)

	default:
		opts.Files = append(opts.Files, tok)
		return 1, nil
	}
}

func takeValue(opts *Options, all []string, i int, apply func(*Options, string) error) (int, error) {
	if i+1 >= len(all) {
		return 0, fmt.Errorf("%s requires a value", all[i])
	}
	if err := apply(opts, all[i+1]); err != nil {
		return 0, err
	}
	return 2, nil
}

func parseSort(opts *Options, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid -s value %q: %w", v, err)
	}
	opts.SortLimit = n
	return nil
}

func parseNth(opts *Options, v string) error {
	opts.NthFields = nil
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Errorf("invalid -n field %q: %w", part, err)
		}
		opts.NthFields = append(opts.NthFields, n)
	}
	return nil
}

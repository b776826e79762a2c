package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/luatypes/internal/annot"
	"github.com/funvibe/luatypes/internal/ast"
	"github.com/funvibe/luatypes/internal/checker"
	"github.com/funvibe/luatypes/internal/config"
	"github.com/funvibe/luatypes/internal/diag"
	"github.com/funvibe/luatypes/internal/modules"
	"github.com/funvibe/luatypes/internal/spectest"
)

// options holds the flags common to every subcommand, parsed by hand by
// walking os.Args rather than reaching for a flag-parsing package.
type options struct {
	verbose  bool
	jsonOut  bool
	open     string
	frontend string
	paths    []string
}

func parseOptions(args []string) options {
	opts := options{open: "lua51"}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-v" || arg == "--verbose":
			opts.verbose = true
		case arg == "--json":
			opts.jsonOut = true
		case arg == "--open":
			if i+1 < len(args) {
				opts.open = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "--open="):
			opts.open = strings.TrimPrefix(arg, "--open=")
		case arg == "--frontend":
			if i+1 < len(args) {
				opts.frontend = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "--frontend="):
			opts.frontend = strings.TrimPrefix(arg, "--frontend=")
		default:
			opts.paths = append(opts.paths, arg)
		}
	}
	return opts
}

// Run is the CLI entry point: `luatypes check <files...>`, `luatypes test
// <dir>`, or `luatypes help`. Returns the process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return 1
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "check":
		return runCheck(rest, os.Stdout, os.Stderr)
	case "test":
		return runTest(rest, os.Stdout, os.Stderr)
	case "help", "-help", "--help":
		printUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		printUsage(os.Stderr)
		return 1
	}
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "usage: luatypes <command> [flags] <args...>")
	fmt.Fprintln(out, "  check <files...>   type-check files, report diagnostics")
	fmt.Fprintln(out, "  test <dir>         run spec harness cases found under dir")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "flags:")
	fmt.Fprintln(out, "  -v, --verbose      log module-resolution tracing to stderr")
	fmt.Fprintln(out, "  --json             emit diagnostics as JSON instead of text")
	fmt.Fprintf(out, "  --open ENV         default open environment when a file has none (known: %s)\n", strings.Join(config.KnownPreludes, ", "))
	fmt.Fprintln(out, "  --frontend NAME    select a registered frontend when more than one is linked in")
}

func logf(verbose bool, format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// diskLoader implements modules.FileLoader by reading files off disk
// relative to dir and parsing them through frontend: disk-backed, one
// parse per module name.
type diskLoader struct {
	dir      string
	frontend Frontend
	openEnv  string
}

func (l *diskLoader) Load(name string) (string, *ast.Program, annot.Stream, bool) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dir, name)
	}
	if filepath.Ext(path) == "" {
		path += config.SourceFileExtension
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, nil, false
	}
	prog, annots, err := l.frontend.Parse(path, string(data))
	if err != nil {
		return "", nil, nil, false
	}
	return path, prog, withDefaultOpen(annots, l.openEnv), true
}

// withDefaultOpen wraps a Stream so that a file carrying no `open`
// annotation of its own falls back to the CLI's --open selection, without
// touching files that declare their own.
func withDefaultOpen(s annot.Stream, env string) annot.Stream {
	if len(s.OpenEnvs()) > 0 || env == "" {
		return s
	}
	return &defaultOpenStream{Stream: s, env: env}
}

type defaultOpenStream struct {
	annot.Stream
	env string
}

func (d *defaultOpenStream) OpenEnvs() []annot.OpenEnv {
	return []annot.OpenEnv{{Name: d.env}}
}

func runCheck(args []string, stdout, stderr io.Writer) int {
	opts := parseOptions(args)
	if len(opts.paths) == 0 {
		fmt.Fprintln(stderr, "usage: luatypes check <files...>")
		return 1
	}

	frontend, ok := lookupFrontend(opts.frontend)
	if !ok {
		fmt.Fprintln(stderr, "no source-language frontend registered: this build of luatypes links no lexer/parser")
		fmt.Fprintln(stderr, "(parsing is an external collaborator of the checker core; link a frontend package that calls cli.RegisterFrontend in its init)")
		return 1
	}

	overallVerdict := "ok"
	var allDiags []*diag.Error

	for _, path := range opts.paths {
		dir := filepath.Dir(path)
		loader := &diskLoader{dir: dir, frontend: frontend, openEnv: opts.open}

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %s\n", path, err)
			overallVerdict = "error"
			continue
		}

		prog, annots, err := frontend.Parse(path, string(data))
		if err != nil {
			fmt.Fprintf(stderr, "%s: %s\n", path, err)
			overallVerdict = "error"
			continue
		}
		annots = withDefaultOpen(annots, opts.open)

		resolver := modules.NewResolver(loader, nil)
		resolver.Verbose = opts.verbose
		resolver.TraceLog = func(format string, args ...interface{}) { logf(true, format, args...) }

		chk := checker.New(path, resolver)
		resolver.Checker = chk
		chk.Check(prog, annots)

		if chk.Bag.Verdict() == "error" {
			overallVerdict = "error"
		}
		allDiags = append(allDiags, chk.Bag.All()...)
	}

	if opts.jsonOut {
		if err := reportJSON(stdout, overallVerdict, allDiags); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	} else {
		reportText(stdout, allDiags, os.Stdout.Fd())
		fmt.Fprintln(stdout, overallVerdict)
	}

	if overallVerdict == "error" {
		return 1
	}
	return 0
}

// fakeT adapts the plain-CLI reporting path to spectest.Run's
// require.TestingT contract without pulling *testing.T into a non-test
// binary.
type fakeT struct {
	name   string
	failed bool
	out    io.Writer
}

func (f *fakeT) Errorf(format string, args ...interface{}) {
	f.failed = true
	fmt.Fprintf(f.out, "FAIL %s: %s\n", f.name, fmt.Sprintf(format, args...))
}

func (f *fakeT) FailNow() {
	f.failed = true
	panic(f)
}

func runTest(args []string, stdout, stderr io.Writer) int {
	opts := parseOptions(args)
	if len(opts.paths) != 1 {
		fmt.Fprintln(stderr, "usage: luatypes test <dir>")
		return 1
	}
	dir := opts.paths[0]

	frontend, ok := lookupFrontend(opts.frontend)
	if !ok {
		fmt.Fprintln(stderr, "no source-language frontend registered: this build of luatypes links no lexer/parser")
		return 1
	}

	var caseFiles []string
	err := filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() && strings.HasSuffix(path, config.TestCaseFileExtension) {
			caseFiles = append(caseFiles, path)
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(stderr, "walking %s: %s\n", dir, err)
		return 1
	}

	total, failed := 0, 0
	for _, file := range caseFiles {
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %s\n", file, err)
			failed++
			continue
		}
		for _, tc := range spectest.ParseCases(string(data)) {
			total++
			logf(opts.verbose, "running %s/%s", file, tc.Name)
			if !runOneCase(frontend, tc, stdout) {
				failed++
			}
		}
	}

	fmt.Fprintf(stdout, "%d cases, %d failed\n", total, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

func runOneCase(frontend Frontend, tc *spectest.Case, out io.Writer) (passed bool) {
	t := &fakeT{name: tc.Name, out: out}
	defer func() {
		if r := recover(); r != nil {
			if r != t {
				panic(r)
			}
		}
		passed = !t.failed
	}()
	spectest.Run(t, frontend, tc)
	return !t.failed
}

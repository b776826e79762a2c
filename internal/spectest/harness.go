// Package spectest implements the checker's conformance-test harness: a
// line-oriented plaintext format bundling one or more modules per test
// case plus inline diagnostic expectations. A case opens with `--8<-- NAME`
// (`-->8-- NAME` disables it), splits auxiliary modules off with `--& NAME`,
// and closes with `--! ok` or `--! error`. The `--& NAME` module marker is
// textually rewritten to txtar's `-- NAME --` section marker so
// golang.org/x/tools/txtar does the archive split.
package spectest

import (
	"strings"

	"golang.org/x/tools/txtar"
)

// ModuleSource is one module's source text within a Case, with every
// embedded expectation comment blanked out (but its line kept, so real
// source line numbers are unaffected).
type ModuleSource struct {
	Name   string
	Source string
}

// Expectation is one `--@<`/`--@^`/`--@v` assertion: a diagnostic bearing
// Message (as a substring) must appear at Line in Module.
type Expectation struct {
	Module  string
	Line    int
	Message string
}

// Case is one `--8<-- NAME` ... `--! ok|error` test.
type Case struct {
	Name         string
	Disabled     bool
	Verdict      string
	Modules      []ModuleSource
	Expectations []Expectation
}

// ParseCases splits data into every test case it contains.
func ParseCases(data string) []*Case {
	lines := strings.Split(data, "\n")
	var cases []*Case
	var cur *Case
	var body []string

	flush := func() {
		if cur == nil {
			return
		}
		cur.fill(body)
		cases = append(cases, cur)
		cur = nil
		body = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(trimmed, "--8<--"):
			flush()
			cur = &Case{Name: strings.TrimSpace(strings.TrimPrefix(trimmed, "--8<--"))}
		case strings.HasPrefix(trimmed, "-->8--"):
			flush()
			cur = &Case{Name: strings.TrimSpace(strings.TrimPrefix(trimmed, "-->8--")), Disabled: true}
		case strings.HasPrefix(trimmed, "--!"):
			if cur != nil {
				cur.Verdict = strings.TrimSpace(strings.TrimPrefix(trimmed, "--!"))
			}
			flush()
		default:
			if cur != nil {
				body = append(body, line)
			}
		}
	}
	flush()
	return cases
}

// fill splits this case's body into modules (via txtar, with `--&`
// rewritten to a txtar section marker) and extracts their expectations.
func (c *Case) fill(body []string) {
	archiveLines := make([]string, 0, len(body)+1)
	archiveLines = append(archiveLines, "-- main --")
	for _, l := range body {
		if name, ok := moduleMarker(l); ok {
			archiveLines = append(archiveLines, "-- "+name+" --")
			continue
		}
		archiveLines = append(archiveLines, l)
	}

	arch := txtar.Parse([]byte(strings.Join(archiveLines, "\n")))
	for _, f := range arch.Files {
		mod, exps := extractExpectations(f.Name, string(f.Data))
		c.Modules = append(c.Modules, mod)
		c.Expectations = append(c.Expectations, exps...)
	}
}

func moduleMarker(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "--&") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, "--&")), true
}

// extractExpectations scans one module's raw text for `--@<`/`--@^`/`--@v`
// lines, blanking each out of the returned source (so real line numbers
// are preserved) and recording the diagnostic line it targets: the
// previous line, two lines above, or the next line respectively.
func extractExpectations(moduleName, data string) (ModuleSource, []Expectation) {
	lines := strings.Split(data, "\n")
	out := make([]string, len(lines))
	var exps []Expectation

	for i, l := range lines {
		trimmed := strings.TrimSpace(l)
		lineNo := i + 1
		switch {
		case strings.HasPrefix(trimmed, "--@<"):
			exps = append(exps, Expectation{Module: moduleName, Line: lineNo - 1, Message: strings.TrimSpace(strings.TrimPrefix(trimmed, "--@<"))})
			out[i] = ""
		case strings.HasPrefix(trimmed, "--@^"):
			exps = append(exps, Expectation{Module: moduleName, Line: lineNo - 2, Message: strings.TrimSpace(strings.TrimPrefix(trimmed, "--@^"))})
			out[i] = ""
		case strings.HasPrefix(trimmed, "--@v"):
			exps = append(exps, Expectation{Module: moduleName, Line: lineNo + 1, Message: strings.TrimSpace(strings.TrimPrefix(trimmed, "--@v"))})
			out[i] = ""
		default:
			out[i] = l
		}
	}
	return ModuleSource{Name: moduleName, Source: strings.Join(out, "\n")}, exps
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/funvibe/luatypes/internal/diag"
	"github.com/mattn/go-isatty"
)

// jsonDiagnostic is the `--json` export shape: the bare ok/error verdict,
// widened with per-diagnostic detail for tooling that embeds this checker
// (an editor integration or LSP, say).
type jsonDiagnostic struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type jsonReport struct {
	Verdict     string           `json:"verdict"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

// reportText prints diagnostics one per line, `file:line:col: [CODE]
// message`, color-gated on whether colorFd is a real terminal.
func reportText(out io.Writer, diags []*diag.Error, colorFd uintptr) {
	color := isatty.IsTerminal(colorFd) || isatty.IsCygwinTerminal(colorFd)
	for _, d := range diags {
		if color && d.Severity == diag.SeverityError {
			fmt.Fprintf(out, "\x1b[31m%s\x1b[0m\n", d.Error())
		} else if color && d.Severity == diag.SeverityWarning {
			fmt.Fprintf(out, "\x1b[33m%s\x1b[0m\n", d.Error())
		} else {
			fmt.Fprintln(out, d.Error())
		}
	}
}

func reportJSON(out io.Writer, verdict string, diags []*diag.Error) error {
	rep := jsonReport{Verdict: verdict}
	for _, d := range diags {
		rep.Diagnostics = append(rep.Diagnostics, jsonDiagnostic{
			File:     d.Span.File,
			Line:     d.Span.Line,
			Column:   d.Span.Column,
			Code:     string(d.Code),
			Severity: string(d.Severity),
			Message:  d.Error(),
		})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/morozRed/sigtrack/internal/fileutil"
	"github.com/morozRed/sigtrack/internal/match"
)

var (
	goodColor  = color.New(color.FgGreen, color.Bold)
	badColor   = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	kindColor  = color.New(color.FgCyan)
	labelColor = color.New(color.Bold)
)

type AnnotateSummary struct {
	Mode         string   `json:"mode"`
	Dataset      string   `json:"dataset"`
	Output       string   `json:"output,omitempty"`
	Commit       string   `json:"commit"`
	Session      string   `json:"session"`
	Diagnostics  int      `json:"diagnostics"`
	Suppressed   int      `json:"suppressed"`
	Signed       int      `json:"signed"`
	Unsigned     int      `json:"unsigned"`
	Files        int      `json:"files"`
	SkippedFiles []string `json:"skipped_files,omitempty"`
	DurationMS   int64    `json:"duration_ms"`
}

type MatchSummary struct {
	Mode       string `json:"mode"`
	OldCommit  string `json:"old_commit"`
	NewCommit  string `json:"new_commit"`
	Comparer   string `json:"comparer"`
	OutputDir  string `json:"output_dir,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	match.Summary
	Ambiguous []string `json:"ambiguous_diagnostics,omitempty"`
}

func PrintAnnotateSummary(w io.Writer, summary AnnotateSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	fmt.Fprintf(w, "%s complete in %dms\n", summary.Mode, summary.DurationMS)
	if summary.Output != "" {
		fmt.Fprintf(w, "output: %s\n", summary.Output)
	}
	fmt.Fprintf(w, "diagnostics: total=%d suppressed=%d signed=%s unsigned=%s\n",
		summary.Diagnostics,
		summary.Suppressed,
		goodColor.Sprint(summary.Signed),
		countColor(summary.Unsigned, warnColor).Sprint(summary.Unsigned))
	fmt.Fprintf(w, "files: %d (session %s)\n", summary.Files, summary.Session)
	if len(summary.SkippedFiles) > 0 {
		fmt.Fprintf(w, "skipped files (%d): %s\n", len(summary.SkippedFiles), SummarizePaths(summary.SkippedFiles, 8))
	}
	return nil
}

func PrintMatchSummary(w io.Writer, summary MatchSummary) error {
	fmt.Fprintf(w, "%s %s..%s (%s) in %dms\n",
		summary.Mode, summary.OldCommit, summary.NewCommit, summary.Comparer, summary.DurationMS)
	fmt.Fprintf(w, "matched=%s unmatched_old=%s unmatched_new=%s ambiguous=%s\n",
		goodColor.Sprint(summary.Matched),
		countColor(summary.UnmatchedOld, badColor).Sprint(summary.UnmatchedOld),
		countColor(summary.UnmatchedNew, badColor).Sprint(summary.UnmatchedNew),
		countColor(summary.Summary.Ambiguous, warnColor).Sprint(summary.Summary.Ambiguous))
	if summary.OutputDir != "" {
		fmt.Fprintf(w, "output: %s\n", summary.OutputDir)
	}
	for _, key := range summary.Ambiguous {
		fmt.Fprintf(w, "  %s %s\n", warnColor.Sprint("ambiguous:"), key)
	}
	return nil
}

func PrintSignature(w io.Writer, out SignatureOutput) error {
	kinds := make([]string, 0, len(out.Kinds))
	for _, kind := range out.Kinds {
		kinds = append(kinds, kindColor.Sprint(string(kind)))
	}
	fmt.Fprintf(w, "%s %s:%d:%d (%s)\n", labelColor.Sprint("position:"), out.File, out.Line, out.Column, out.Language)
	fmt.Fprintf(w, "%s %s\n", labelColor.Sprint("path:"), strings.Join(kinds, " < "))
	nesting := make([]string, 0, len(out.Nesting))
	for _, kind := range out.Nesting {
		nesting = append(nesting, string(kind))
	}
	fmt.Fprintf(w, "%s %s\n", labelColor.Sprint("nesting:"), strings.Join(nesting, " > "))
	fmt.Fprintf(w, "%s %s\n", labelColor.Sprint("signature:"), out.Signature)
	return nil
}

func PrintCompare(w io.Writer, out CompareOutput) error {
	verdict := goodColor.Sprint("same")
	if !out.Same {
		verdict = badColor.Sprint("different")
	}
	fmt.Fprintf(w, "similarity %.3f under %s: %s\n", out.Similarity, out.Policy, verdict)
	return nil
}

// countColor leaves zero counts uncolored.
func countColor(n int, c *color.Color) *color.Color {
	if n == 0 {
		return color.New(color.Reset)
	}
	return c
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}

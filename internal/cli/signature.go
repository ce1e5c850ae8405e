package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/morozRed/sigtrack/internal/fileutil"
	"github.com/morozRed/sigtrack/internal/languages"
	"github.com/morozRed/sigtrack/internal/signature"
	"github.com/morozRed/sigtrack/internal/snapshot"
)

type SignatureOutput struct {
	File      string          `json:"file"`
	Line      int64           `json:"line"`
	Column    int64           `json:"column"`
	Language  string          `json:"language"`
	Leaf      snapshot.Kind   `json:"leaf"`
	Kinds     []snapshot.Kind `json:"kinds"`
	Nesting   []snapshot.Kind `json:"nesting"`
	Signature string          `json:"signature"`
	Policy    string          `json:"policy"`
}

func RunSignature(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	line, err := parsePosition("line", args[1])
	if err != nil {
		return err
	}
	column, err := parsePosition("column", args[2])
	if err != nil {
		return err
	}

	rel := args[0]
	if filepath.IsAbs(rel) {
		if r, err := filepath.Rel(env.root, rel); err == nil {
			rel = r
		}
	}
	if env.ignore.ShouldIgnore(rel, false) {
		env.logger.Warn("position is in an ignored path; its diagnostics would be dropped", "file", args[0])
	}

	file, err := languages.NewDefaultRegistry().ParseFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	snap, err := file.CaptureAt(line, column)
	file.Close()
	if err != nil {
		return err
	}

	if snap.IsEmpty() {
		return fmt.Errorf("no syntax node at %s:%d:%d", args[0], line, column)
	}
	leaf, _ := snap.Leaf()

	sig := signature.FromSnapshot(snap, env.policy)
	out := SignatureOutput{
		File:      args[0],
		Line:      line,
		Column:    column,
		Language:  file.Language,
		Leaf:      leaf,
		Kinds:     sig.Kinds(),
		Nesting:   snap.RootFirst(),
		Signature: sig.String(),
		Policy:    env.policy.String(),
	}
	if asJSON {
		return fileutil.PrintJSON(cmd.OutOrStdout(), out)
	}
	return PrintSignature(cmd.OutOrStdout(), out)
}

func parsePosition(name, raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q (want a positive number)", name, raw)
	}
	return n, nil
}

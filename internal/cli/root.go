package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/sigtrack/internal/config"
	"github.com/morozRed/sigtrack/internal/match"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sigtrack",
		Short: "Track static-analysis warnings across revisions by syntactic signature",
		Long: `Sigtrack records where in the syntax tree each diagnostic was reported and
uses that signature to tell whether a warning in one revision is the same
warning in another, even after the code around it moved.

Settings are read from .sigtrack.toml in the working directory, and
.sigtrackignore lists paths and checks whose diagnostics are dropped.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().Bool("quiet", false, "Silence all logging")
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: ./"+config.FileName+")")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.FileName + " in the current directory",
		Args:  cobra.NoArgs,
		RunE:  RunInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	signatureCmd := &cobra.Command{
		Use:   "signature <file> <line> <column>",
		Short: "Print the syntactic signature of a source position",
		Args:  cobra.ExactArgs(3),
		RunE:  RunSignature,
	}
	signatureCmd.Flags().Bool("json", false, "Print machine-readable output")

	annotateCmd := &cobra.Command{
		Use:   "annotate <dataset>",
		Short: "Attach signatures to the diagnostics of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  RunAnnotate,
	}
	annotateCmd.Flags().String("src", ".", "Source root the dataset's file names are relative to")
	annotateCmd.Flags().StringP("out", "o", "", "Write the annotated dataset here (default: stdout)")
	annotateCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	matchCmd := &cobra.Command{
		Use:   "match <old-dataset> <new-dataset>",
		Short: "Match the diagnostics of two datasets",
		Args:  cobra.ExactArgs(2),
		RunE:  RunMatch,
	}
	matchCmd.Flags().String("old-src", "", "Source root of the old revision; annotates the old dataset first")
	matchCmd.Flags().String("new-src", "", "Source root of the new revision; annotates the new dataset first")
	matchCmd.Flags().String("comparer", comparerAny, "Comparer: "+comparerNames())
	matchCmd.Flags().StringArray("rename", nil, "Renamed file as old=new (repeatable)")
	matchCmd.Flags().StringArray("deleted", nil, "File deleted in the new revision (repeatable)")
	matchCmd.Flags().StringSlice("message-checks", nil, "Checks compared by message rather than position (comma-separated)")
	matchCmd.Flags().StringP("out", "o", "", "Write matched/unmatched datasets into this directory")
	matchCmd.Flags().Bool("json", false, "Print machine-readable results")

	compareCmd := &cobra.Command{
		Use:   "compare <signature> <signature>",
		Short: "Compare two textual signatures",
		Args:  cobra.ExactArgs(2),
		RunE:  RunCompare,
	}
	compareCmd.Flags().String("policy", "", "Override the configured policy: exact|lcs|edit")
	compareCmd.Flags().Float64("threshold", 0, "Override the configured threshold")
	compareCmd.Flags().Bool("json", false, "Print machine-readable output")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sigtrack %s\n", version)
		},
	}

	rootCmd.AddCommand(
		initCmd,
		signatureCmd,
		annotateCmd,
		matchCmd,
		compareCmd,
		versionCmd,
	)

	return rootCmd
}

const (
	comparerExact     = "exact"
	comparerSignature = "signature"
	comparerLine      = "line"
	comparerProblem   = "problem"
	comparerAny       = "any"
)

func comparerNames() string {
	return strings.Join([]string{comparerExact, comparerSignature, comparerLine, comparerProblem, comparerAny}, "|")
}

// comparerOptions are the inputs a comparer may need besides its name.
type comparerOptions struct {
	oldSrc        string
	newSrc        string
	messageChecks []string
	logger        *slog.Logger
}

// buildComparer builds the comparer selected by --comparer. "any" accepts a
// pair that did not move, whose signatures agree, or, when both source roots
// are known, whose line moved with the diff. Checks named by
// --message-checks are compared by message instead.
func buildComparer(name string, opts comparerOptions) (match.Comparer, error) {
	haveSources := opts.oldSrc != "" && opts.newSrc != ""

	var base match.Comparer
	switch name {
	case comparerExact:
		base = match.Exact()
	case comparerSignature:
		base = match.BySignature()
	case comparerLine:
		if !haveSources {
			return nil, fmt.Errorf("--comparer %s needs both --old-src and --new-src", comparerLine)
		}
		base = match.LineMotion(opts.oldSrc, opts.newSrc, opts.logger)
	case comparerProblem:
		base = match.Problem()
	case comparerAny, "":
		comparers := []match.Comparer{match.Exact(), match.BySignature()}
		if haveSources {
			comparers = append(comparers, match.LineMotion(opts.oldSrc, opts.newSrc, opts.logger))
		}
		base = match.Any(comparers...)
	default:
		return nil, fmt.Errorf("unsupported comparer %q (supported: %s)", name, comparerNames())
	}

	if len(opts.messageChecks) == 0 {
		return base, nil
	}
	return match.Conditional(match.OfType(opts.messageChecks...), match.Problem(), base), nil
}

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/morozRed/sigtrack/internal/diagnostic"
	"github.com/morozRed/sigtrack/internal/fileutil"
	"github.com/morozRed/sigtrack/internal/match"
)

func RunMatch(cmd *cobra.Command, args []string) error {
	start := time.Now()
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	comparerName, err := OptionalStringFlag(cmd, "comparer")
	if err != nil {
		return err
	}
	oldSrc, err := OptionalStringFlag(cmd, "old-src")
	if err != nil {
		return err
	}
	newSrc, err := OptionalStringFlag(cmd, "new-src")
	if err != nil {
		return err
	}
	messageChecks, err := cmd.Flags().GetStringSlice("message-checks")
	if err != nil {
		return fmt.Errorf("failed to read --message-checks flag: %w", err)
	}
	comparer, err := buildComparer(comparerName, comparerOptions{
		oldSrc:        env.resolveSrc(oldSrc),
		newSrc:        env.resolveSrc(newSrc),
		messageChecks: messageChecks,
		logger:        env.logger,
	})
	if err != nil {
		return err
	}
	renames, err := ParseRenames(cmd)
	if err != nil {
		return err
	}
	outDir, err := OptionalStringFlag(cmd, "out")
	if err != nil {
		return err
	}

	oldDataset, err := loadSide(cmd, env, args[0], oldSrc, asJSON)
	if err != nil {
		return err
	}
	newDataset, err := loadSide(cmd, env, args[1], newSrc, asJSON)
	if err != nil {
		return err
	}

	opts := []match.MatcherOption{match.WithLogger(env.logger)}
	if renames != nil {
		opts = append(opts, match.WithPaths(renames))
	}
	results := match.NewMatcher(comparer, opts...).Match(oldDataset, newDataset)

	if outDir != "" {
		if err := results.Save(outDir); err != nil {
			return err
		}
	}
	if asJSON {
		return fileutil.PrintJSON(cmd.OutOrStdout(), results)
	}

	summary := MatchSummary{
		Mode:       "match",
		OldCommit:  results.OldCommit,
		NewCommit:  results.NewCommit,
		Comparer:   comparerName,
		OutputDir:  outDir,
		Summary:    results.Summary(),
		DurationMS: time.Since(start).Milliseconds(),
	}
	for _, amb := range results.Ambiguous {
		summary.Ambiguous = append(summary.Ambiguous, amb.Old.Key())
	}
	return PrintMatchSummary(cmd.OutOrStdout(), summary)
}

// loadSide reads one dataset, drops suppressed diagnostics, and annotates it
// when srcRoot points at its sources.
func loadSide(cmd *cobra.Command, env *environment, path, srcRoot string, asJSON bool) (*diagnostic.Dataset, error) {
	dataset, err := diagnostic.LoadDataset(path, env.policy)
	if err != nil {
		return nil, err
	}
	env.filterSuppressed(dataset)

	if srcRoot == "" {
		return dataset, nil
	}
	if _, err := annotateDataset(cmd, env, dataset, srcRoot, asJSON); err != nil {
		return nil, err
	}
	return dataset, nil
}

package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/morozRed/sigtrack/internal/diagnostic"
	"github.com/morozRed/sigtrack/internal/languages"
	"github.com/morozRed/sigtrack/internal/session"
)

func RunAnnotate(cmd *cobra.Command, args []string) error {
	start := time.Now()
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	srcRoot, err := OptionalStringFlag(cmd, "src")
	if err != nil {
		return err
	}
	outPath, err := OptionalStringFlag(cmd, "out")
	if err != nil {
		return err
	}

	dataset, err := diagnostic.LoadDataset(args[0], env.policy)
	if err != nil {
		return err
	}
	suppressed := env.filterSuppressed(dataset)

	report, err := annotateDataset(cmd, env, dataset, srcRoot, asJSON)
	if err != nil {
		return err
	}

	if outPath == "" {
		_, err := dataset.WriteTo(cmd.OutOrStdout())
		return err
	}
	if err := dataset.Save(outPath); err != nil {
		return err
	}

	summary := AnnotateSummary{
		Mode:         "annotate",
		Dataset:      args[0],
		Output:       outPath,
		Commit:       dataset.CommitID,
		Session:      report.Session,
		Diagnostics:  report.Diagnostics,
		Suppressed:   suppressed,
		Signed:       report.Signed,
		Unsigned:     report.Unsigned,
		Files:        report.Files,
		SkippedFiles: report.SkippedFiles,
		DurationMS:   time.Since(start).Milliseconds(),
	}
	return PrintAnnotateSummary(cmd.OutOrStdout(), summary, asJSON)
}

// annotateDataset runs one session over dataset, resolving its file names
// against srcRoot.
func annotateDataset(cmd *cobra.Command, env *environment, dataset *diagnostic.Dataset, srcRoot string, asJSON bool) (session.Report, error) {
	if srcRoot == "" {
		srcRoot = env.root
	} else {
		srcRoot = env.resolveSrc(srcRoot)
	}

	regOpts, err := env.config.RegistryOptions()
	if err != nil {
		return session.Report{}, err
	}
	progress := newProgressReporter(cmd.ErrOrStderr(), "annotate", len(dataset.Files()), asJSON)
	s, err := session.New(session.Options{
		Parsers:  languages.NewDefaultRegistry(),
		Registry: regOpts,
		Logger:   env.logger,
		OnFile:   progress.Update,
	})
	if err != nil {
		return session.Report{}, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := s.Annotate(ctx, dataset, srcRoot)
	progress.Done(report.Files)
	return report, err
}

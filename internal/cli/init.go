package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/morozRed/sigtrack/internal/config"
)

func RunInit(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	force, err := OptionalBoolFlag(cmd, "force", false)
	if err != nil {
		return err
	}

	path := filepath.Join(rootPath, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
	}
	if err := config.Default().Save(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.FileName, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/sigtrack/internal/match"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string, fallback bool) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return fallback, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return fallback, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func OptionalCountFlag(cmd *cobra.Command, name string) (int, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return 0, nil
	}
	value, err := cmd.Flags().GetCount(name)
	if err != nil {
		return 0, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

// ParseRenames reads --rename old=new and --deleted path into a paths
// mapping. It returns nil when neither flag was given.
func ParseRenames(cmd *cobra.Command) (*match.Renames, error) {
	moved, err := cmd.Flags().GetStringArray("rename")
	if err != nil {
		return nil, fmt.Errorf("failed to read --rename flag: %w", err)
	}
	deleted, err := cmd.Flags().GetStringArray("deleted")
	if err != nil {
		return nil, fmt.Errorf("failed to read --deleted flag: %w", err)
	}
	if len(moved) == 0 && len(deleted) == 0 {
		return nil, nil
	}

	renames := match.NewRenames()
	for _, entry := range moved {
		oldPath, newPath, ok := strings.Cut(entry, "=")
		oldPath, newPath = strings.TrimSpace(oldPath), strings.TrimSpace(newPath)
		if !ok || oldPath == "" || newPath == "" {
			return nil, fmt.Errorf("invalid --rename %q (want old=new)", entry)
		}
		renames.Move(oldPath, newPath)
	}
	for _, path := range deleted {
		if path = strings.TrimSpace(path); path != "" {
			renames.Delete(path)
		}
	}
	return renames, nil
}

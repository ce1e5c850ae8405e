package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/sigtrack/internal/config"
	"github.com/morozRed/sigtrack/internal/diagnostic"
	"github.com/morozRed/sigtrack/internal/ignore"
	"github.com/morozRed/sigtrack/internal/logging"
	"github.com/morozRed/sigtrack/internal/signature"
)

// environment is what every command resolves before doing work.
type environment struct {
	root   string
	config *config.Config
	policy signature.Policy
	logger *slog.Logger
	ignore *ignore.Matcher
}

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}

func loadEnvironment(cmd *cobra.Command) (*environment, error) {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return nil, err
	}

	configPath, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}
	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(rootPath)
	}
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	verbosity, err := OptionalCountFlag(cmd, "verbose")
	if err != nil {
		return nil, err
	}
	quiet, err := OptionalBoolFlag(cmd, "quiet", false)
	if err != nil {
		return nil, err
	}
	level := logging.LevelFromVerbosity(logging.LevelFromString(cfg.Log.Level), verbosity, quiet)

	fileRules, err := LoadIgnoreRules(rootPath)
	if err != nil {
		return nil, err
	}
	rules := append(append([]string{}, cfg.Ignore...), fileRules...)

	return &environment{
		root:   rootPath,
		config: cfg,
		policy: policy,
		logger: logging.NewLogger(cmd.ErrOrStderr(), level),
		ignore: ignore.NewMatcher(rules),
	}, nil
}

// resolveSrc makes a source root relative to the working directory. An
// empty root stays empty.
func (e *environment) resolveSrc(dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(e.root, dir)
}

// filterSuppressed drops diagnostics the ignore rules suppress and returns
// how many were dropped.
func (e *environment) filterSuppressed(dataset *diagnostic.Dataset) int {
	before := len(dataset.Diagnostics)
	dataset.Filter(func(d diagnostic.Diagnostic) bool {
		return !e.ignore.Suppresses(d.File, d.Type())
	})
	dropped := before - len(dataset.Diagnostics)
	if dropped > 0 {
		e.logger.Debug("suppressed diagnostics", "commit", dataset.CommitID, "count", dropped)
	}
	return dropped
}

func LoadIgnoreRules(rootPath string) ([]string, error) {
	ignorePath := filepath.Join(rootPath, config.IgnoreFileName)
	f, err := os.Open(ignorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", config.IgnoreFileName, err)
	}
	defer f.Close()

	rules := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", config.IgnoreFileName, err)
	}

	return rules, nil
}

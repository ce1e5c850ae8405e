// Package session runs analysis passes that attach signatures to dataset
// diagnostics. It plays the host's part: for each diagnostic it records the
// syntactic context of the flagged position under the diagnostic's
// description, then binds the diagnostic to it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/morozRed/sigtrack/internal/diagnostic"
	"github.com/morozRed/sigtrack/internal/logging"
	"github.com/morozRed/sigtrack/internal/parser"
	"github.com/morozRed/sigtrack/internal/registry"
	"github.com/morozRed/sigtrack/internal/signature"
)

// Registry is the registry type a session owns.
type Registry = registry.Registry[diagnostic.Diagnostic, diagnostic.Description]

type Options struct {
	Parsers  *parser.Registry
	Registry []registry.Option
	Logger   *slog.Logger

	// OnFile is called before each source file is parsed, with the number
	// of files started so far.
	OnFile func(file string, count int)
}

// Session owns one Registry. Passes run one after another; a session must
// not be shared between goroutines.
type Session struct {
	ID string

	parsers  *parser.Registry
	registry *Registry
	logger   *slog.Logger
	onFile   func(string, int)
}

// Report summarizes one Annotate pass.
type Report struct {
	Session      string   `json:"session"`
	Diagnostics  int      `json:"diagnostics"`
	Signed       int      `json:"signed"`
	Unsigned     int      `json:"unsigned"`
	Files        int      `json:"files"`
	SkippedFiles []string `json:"skipped_files,omitempty"`
}

func New(opts Options) (*Session, error) {
	if opts.Parsers == nil {
		return nil, errors.New("session: parser registry is required")
	}
	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	logger = logger.With("session", id[:8])

	regOpts := append([]registry.Option{registry.WithLogger(logger)}, opts.Registry...)
	reg, err := registry.New[diagnostic.Diagnostic, diagnostic.Description](
		diagnostic.Diagnostic.Key,
		diagnostic.Description.Fingerprint,
		regOpts...,
	)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	return &Session{
		ID:       id,
		parsers:  opts.Parsers,
		registry: reg,
		logger:   logger,
		onFile:   opts.OnFile,
	}, nil
}

// Registry exposes the session's registry to host callbacks.
func (s *Session) Registry() *Registry {
	return s.registry
}

// Annotate sets the Signature of every diagnostic in dataset whose source
// file under srcRoot can be parsed. The registry is cleared when the pass
// ends, whatever the outcome.
func (s *Session) Annotate(ctx context.Context, dataset *diagnostic.Dataset, srcRoot string) (Report, error) {
	defer s.registry.Clear()

	report := Report{Session: s.ID, Diagnostics: len(dataset.Diagnostics)}
	byFile := make(map[string][]int)
	for i, diag := range dataset.Diagnostics {
		byFile[diag.File] = append(byFile[diag.File], i)
	}

	for _, file := range dataset.Files() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Files++
		if s.onFile != nil {
			s.onFile(file, report.Files)
		}

		parsed, err := s.parsers.ParseFile(ctx, resolvePath(srcRoot, file))
		if err != nil {
			if errors.Is(err, parser.ErrUnsupportedFile) || errors.Is(err, os.ErrNotExist) {
				s.logger.Warn("skipping source file", "file", file, "error", err)
				report.SkippedFiles = append(report.SkippedFiles, file)
				continue
			}
			return report, err
		}

		for _, idx := range byFile[file] {
			diag := &dataset.Diagnostics[idx]
			if !s.observe(parsed, *diag) {
				continue
			}
			if sig, ok := s.bind(*diag); ok {
				diag.Signature = sig
			}
		}
		parsed.Close()
	}

	for _, diag := range dataset.Diagnostics {
		if diag.Signature != nil {
			report.Signed++
		} else {
			report.Unsigned++
		}
	}
	stats := s.registry.Stats()
	s.logger.Info("annotated dataset",
		"commit", dataset.CommitID,
		"signed", report.Signed,
		"unsigned", report.Unsigned,
		"pending", stats.Pending,
		"bound", stats.Bound)
	return report, nil
}

// observe is the analysis-time step: the tree is live and the diagnostic
// only exists as a description.
func (s *Session) observe(file *parser.File, diag diagnostic.Diagnostic) bool {
	cursor, err := file.CursorAt(diag.Line, diag.Column)
	if err != nil {
		s.logger.Debug("no syntax node for diagnostic", "diagnostic", diag.Key(), "error", err)
		return false
	}
	s.registry.RecordCursor(diag.Description(), cursor)
	return true
}

// bind is the reporting step, once the host has materialized diag.
func (s *Session) bind(diag diagnostic.Diagnostic) (signature.Signature, bool) {
	if !s.registry.BindDiagnostic(diag, diag.Description()) {
		return nil, false
	}
	return s.registry.Signature(diag)
}

func resolvePath(root, file string) string {
	if root == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(root, file)
}

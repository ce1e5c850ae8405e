package match

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/morozRed/sigtrack/internal/diagnostic"
	"github.com/morozRed/sigtrack/internal/logging"
)

// Pair is an old diagnostic and the new diagnostic it was matched to.
type Pair struct {
	Old diagnostic.Diagnostic `json:"old"`
	New diagnostic.Diagnostic `json:"new"`
}

// Ambiguity is an old diagnostic that several new diagnostics matched.
type Ambiguity struct {
	Old        diagnostic.Diagnostic   `json:"old"`
	Candidates []diagnostic.Diagnostic `json:"candidates"`
}

// Results is the outcome of matching two datasets. Ambiguous old
// diagnostics also appear in UnmatchedOld.
type Results struct {
	OldCommit    string                  `json:"old_commit"`
	NewCommit    string                  `json:"new_commit"`
	Matched      []Pair                  `json:"matched"`
	UnmatchedOld []diagnostic.Diagnostic `json:"unmatched_old"`
	UnmatchedNew []diagnostic.Diagnostic `json:"unmatched_new"`
	Ambiguous    []Ambiguity             `json:"ambiguous,omitempty"`
}

// Summary is a count-only view of Results.
type Summary struct {
	Matched      int `json:"matched"`
	UnmatchedOld int `json:"unmatched_old"`
	UnmatchedNew int `json:"unmatched_new"`
	Ambiguous    int `json:"ambiguous"`
}

func (r *Results) Summary() Summary {
	return Summary{
		Matched:      len(r.Matched),
		UnmatchedOld: len(r.UnmatchedOld),
		UnmatchedNew: len(r.UnmatchedNew),
		Ambiguous:    len(r.Ambiguous),
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("matched %d, unmatched old %d, unmatched new %d, ambiguous %d",
		s.Matched, s.UnmatchedOld, s.UnmatchedNew, s.Ambiguous)
}

// Save writes the four result datasets into dir.
func (r *Results) Save(dir string) error {
	matchedOld := make([]diagnostic.Diagnostic, 0, len(r.Matched))
	matchedNew := make([]diagnostic.Diagnostic, 0, len(r.Matched))
	for _, pair := range r.Matched {
		matchedOld = append(matchedOld, pair.Old)
		matchedNew = append(matchedNew, pair.New)
	}

	outputs := []struct {
		name    string
		dataset diagnostic.Dataset
	}{
		{"matched_old", diagnostic.Dataset{CommitID: r.OldCommit, Diagnostics: matchedOld}},
		{"matched_new", diagnostic.Dataset{CommitID: r.NewCommit, Diagnostics: matchedNew}},
		{"unmatched_old", diagnostic.Dataset{CommitID: r.OldCommit, Diagnostics: r.UnmatchedOld}},
		{"unmatched_new", diagnostic.Dataset{CommitID: r.NewCommit, Diagnostics: r.UnmatchedNew}},
	}
	for _, out := range outputs {
		if err := out.dataset.Save(filepath.Join(dir, out.name)); err != nil {
			return err
		}
	}
	return nil
}

// Matcher pairs diagnostics across two datasets.
type Matcher struct {
	comparer Comparer
	paths    Paths
	logger   *slog.Logger
}

type MatcherOption func(*Matcher)

// WithPaths sets how old file names map to new ones. The default assumes
// files kept their names.
func WithPaths(paths Paths) MatcherOption {
	return func(m *Matcher) { m.paths = paths }
}

func WithLogger(logger *slog.Logger) MatcherOption {
	return func(m *Matcher) { m.logger = logger }
}

func NewMatcher(comparer Comparer, opts ...MatcherOption) *Matcher {
	m := &Matcher{comparer: comparer, paths: SamePaths{}, logger: logging.NewDiscardLogger()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match pairs each old diagnostic with the single new diagnostic, in the
// corresponding file, that the comparer accepts. An old diagnostic with no
// candidate, or with more than one, stays unmatched. A new diagnostic is
// matched at most once.
func (m *Matcher) Match(old, new *diagnostic.Dataset) *Results {
	results := &Results{
		OldCommit:    old.CommitID,
		NewCommit:    new.CommitID,
		Matched:      make([]Pair, 0),
		UnmatchedOld: make([]diagnostic.Diagnostic, 0),
		UnmatchedNew: make([]diagnostic.Diagnostic, 0),
	}

	byFile := make(map[string][]int)
	for i, diag := range new.Diagnostics {
		file := filepath.Clean(diag.File)
		byFile[file] = append(byFile[file], i)
	}
	used := make([]bool, len(new.Diagnostics))

	for _, oldDiag := range old.Diagnostics {
		newFile, ok := m.paths.NewPath(oldDiag.File)
		if !ok {
			results.UnmatchedOld = append(results.UnmatchedOld, oldDiag)
			continue
		}

		var candidates []int
		for _, idx := range byFile[newFile] {
			if !used[idx] && m.comparer.AreSame(oldDiag, new.Diagnostics[idx]) {
				candidates = append(candidates, idx)
			}
		}

		switch len(candidates) {
		case 0:
			results.UnmatchedOld = append(results.UnmatchedOld, oldDiag)
		case 1:
			used[candidates[0]] = true
			results.Matched = append(results.Matched, Pair{Old: oldDiag, New: new.Diagnostics[candidates[0]]})
		default:
			ambiguity := Ambiguity{Old: oldDiag, Candidates: make([]diagnostic.Diagnostic, 0, len(candidates))}
			keys := make([]string, 0, len(candidates))
			for _, idx := range candidates {
				ambiguity.Candidates = append(ambiguity.Candidates, new.Diagnostics[idx])
				keys = append(keys, new.Diagnostics[idx].Key())
			}
			m.logger.Warn("multiple matches for diagnostic",
				"diagnostic", oldDiag.Key(),
				"candidates", strings.Join(keys, "; "))
			results.Ambiguous = append(results.Ambiguous, ambiguity)
			results.UnmatchedOld = append(results.UnmatchedOld, oldDiag)
		}
	}

	for i, diag := range new.Diagnostics {
		if !used[i] {
			results.UnmatchedNew = append(results.UnmatchedNew, diag)
		}
	}

	m.logger.Info("matched datasets",
		"old", old.CommitID,
		"new", new.CommitID,
		"summary", results.Summary().String())
	return results
}

package signature

import (
	"errors"
	"fmt"
	"strings"

	"github.com/morozRed/sigtrack/internal/snapshot"
)

// ErrInvalidPolicy is returned when a policy mode or threshold is unusable.
var ErrInvalidPolicy = errors.New("invalid similarity policy")

// Mode selects how two kind sequences are scored when they are not identical.
type Mode int

const (
	// ModeExact accepts identical sequences only.
	ModeExact Mode = iota
	// ModeLCS scores by longest common subsequence.
	ModeLCS
	// ModeEdit scores by Levenshtein distance over kinds.
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModeLCS:
		return "lcs"
	case ModeEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// ParseMode accepts the names printed by Mode.String.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "exact":
		return ModeExact, nil
	case "lcs", "":
		return ModeLCS, nil
	case "edit", "levenshtein":
		return ModeEdit, nil
	default:
		return 0, fmt.Errorf("%w: unsupported mode %q (supported: exact, lcs, edit)", ErrInvalidPolicy, raw)
	}
}

// DefaultThreshold tolerates one or two inserted wrapper nodes on a typical
// path of ten to fifteen kinds.
const DefaultThreshold = 0.8

// Policy decides when two kind sequences denote the same diagnostic.
type Policy struct {
	Mode      Mode
	Threshold float64
}

// DefaultPolicy is LCS scoring with DefaultThreshold.
func DefaultPolicy() Policy {
	return Policy{Mode: ModeLCS, Threshold: DefaultThreshold}
}

// ExactPolicy reproduces plain element-wise equality.
func ExactPolicy() Policy {
	return Policy{Mode: ModeExact, Threshold: 1}
}

// Validate rejects thresholds outside (0, 1]. A zero threshold would make
// disjoint paths equivalent.
func (p Policy) Validate() error {
	switch p.Mode {
	case ModeExact, ModeLCS, ModeEdit:
	default:
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidPolicy, int(p.Mode))
	}
	if p.Threshold <= 0 || p.Threshold > 1 {
		return fmt.Errorf("%w: threshold %.3f must be in (0, 1]", ErrInvalidPolicy, p.Threshold)
	}
	return nil
}

// Similarity scores a and b in [0, 1]. Identical sequences score 1, and
// sequences without a shared kind score 0 under every mode.
func (p Policy) Similarity(a, b []snapshot.Kind) float64 {
	if kindsEqual(a, b) {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	switch p.Mode {
	case ModeLCS:
		return 2 * float64(lcsLength(a, b)) / float64(len(a)+len(b))
	case ModeEdit:
		longest := max(len(a), len(b))
		return 1 - float64(editDistance(a, b))/float64(longest)
	default:
		return 0
	}
}

// Same reports whether a and b are close enough under p. An invalid policy
// falls back to exact equality.
func (p Policy) Same(a, b []snapshot.Kind) bool {
	if kindsEqual(a, b) {
		return true
	}
	if p.Validate() != nil || p.Mode == ModeExact {
		return false
	}
	return p.Similarity(a, b) >= p.Threshold
}

func (p Policy) String() string {
	return fmt.Sprintf("%s@%.2f", p.Mode, p.Threshold)
}

// Package signature models durable identities for diagnostics, derived from
// the syntactic path of the program point that produced them.
package signature

import (
	"errors"
	"fmt"
	"strings"

	"github.com/morozRed/sigtrack/internal/snapshot"
)

// ErrMalformed is returned by Parse for text that is not a signature.
var ErrMalformed = errors.New("malformed signature")

// TextPrefix starts the textual form written by String and read by Parse.
const TextPrefix = "TreeSignature:"

// Signature decides whether two diagnostics, possibly from different
// revisions of a source file, are the same underlying issue.
//
// The set of implementations is closed: *PathSignature and *RefSignature.
type Signature interface {
	AreSame(other Signature) bool
	Kinds() []snapshot.Kind
	String() string

	sealed()
}

// PathSignature is built from a captured snapshot.
type PathSignature struct {
	path   snapshot.Snapshot
	policy Policy
}

// FromSnapshot builds a signature that compares with policy.
func FromSnapshot(snap snapshot.Snapshot, policy Policy) *PathSignature {
	return &PathSignature{path: snap, policy: policy}
}

func (s *PathSignature) Snapshot() snapshot.Snapshot {
	return s.path
}

func (s *PathSignature) Policy() Policy {
	return s.policy
}

func (s *PathSignature) Kinds() []snapshot.Kind {
	return s.path.Kinds()
}

// AreSame applies the receiver's policy to both kind sequences.
func (s *PathSignature) AreSame(other Signature) bool {
	if other == nil {
		return false
	}
	return s.policy.Same(s.path.Kinds(), other.Kinds())
}

func (s *PathSignature) String() string {
	return encode(s.path.Kinds())
}

func (*PathSignature) sealed() {}

// RefSignature keeps a live cursor instead of a snapshot. The path is
// captured each time it is needed, so the result depends on the cursor still
// being valid at that point.
type RefSignature struct {
	cursor snapshot.Cursor
	policy Policy
}

func FromCursor(c snapshot.Cursor, policy Policy) *RefSignature {
	return &RefSignature{cursor: c, policy: policy}
}

func (s *RefSignature) Kinds() []snapshot.Kind {
	return snapshot.Capture(s.cursor).Kinds()
}

// Freeze captures the cursor now and returns the equivalent PathSignature.
func (s *RefSignature) Freeze() *PathSignature {
	return FromSnapshot(snapshot.Capture(s.cursor), s.policy)
}

func (s *RefSignature) AreSame(other Signature) bool {
	if other == nil {
		return false
	}
	return s.policy.Same(s.Kinds(), other.Kinds())
}

func (s *RefSignature) String() string {
	return encode(s.Kinds())
}

func (*RefSignature) sealed() {}

// Similarity scores two signatures with the policy of a.
func Similarity(a, b Signature) float64 {
	if a == nil || b == nil {
		return 0
	}
	var policy Policy
	switch sig := a.(type) {
	case *PathSignature:
		policy = sig.policy
	case *RefSignature:
		policy = sig.policy
	}
	return policy.Similarity(a.Kinds(), b.Kinds())
}

// Parse reads the form produced by String.
func Parse(raw string, policy Policy) (*PathSignature, error) {
	raw = strings.TrimSpace(raw)
	body, ok := strings.CutPrefix(raw, TextPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix in %q", ErrMalformed, TextPrefix, raw)
	}
	if body == "" {
		return FromSnapshot(snapshot.FromKinds(), policy), nil
	}

	parts := strings.Split(body, ",")
	kinds := make([]snapshot.Kind, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: empty kind in %q", ErrMalformed, raw)
		}
		kinds = append(kinds, snapshot.Kind(part))
	}
	return FromSnapshot(snapshot.FromKinds(kinds...), policy), nil
}

func encode(kinds []snapshot.Kind) string {
	var b strings.Builder
	b.WriteString(TextPrefix)
	for i, kind := range kinds {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(kind))
	}
	return b.String()
}

// Package snapshot captures the syntactic context of a program point as an
// immutable sequence of node kinds.
package snapshot

import "strings"

// Kind is the syntactic kind tag of a tree position, e.g. "method_invocation".
type Kind string

// Cursor is a position in a syntax tree that can report its kind and step
// towards the root. Parent returns nil at the root.
type Cursor interface {
	Kind() Kind
	Parent() Cursor
}

// Snapshot is an ordered, leaf-first list of kinds from a program point up to
// the root. The zero value is an empty snapshot.
type Snapshot struct {
	kinds []Kind
}

// Capture walks c up to the root and copies every kind it passes. The cursor
// is not retained, so the caller may invalidate the underlying tree as soon
// as Capture returns.
func Capture(c Cursor) Snapshot {
	kinds := make([]Kind, 0, 16)
	for c != nil {
		kinds = append(kinds, c.Kind())
		c = c.Parent()
	}
	return Snapshot{kinds: kinds}
}

// FromKinds builds a snapshot from leaf-first kinds.
func FromKinds(kinds ...Kind) Snapshot {
	if len(kinds) == 0 {
		return Snapshot{}
	}
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return Snapshot{kinds: out}
}

// Kinds returns a copy of the leaf-first kinds.
func (s Snapshot) Kinds() []Kind {
	out := make([]Kind, len(s.kinds))
	copy(out, s.kinds)
	return out
}

// RootFirst returns a copy of the kinds ordered from the root down.
func (s Snapshot) RootFirst() []Kind {
	out := make([]Kind, len(s.kinds))
	for i, kind := range s.kinds {
		out[len(s.kinds)-1-i] = kind
	}
	return out
}

func (s Snapshot) Len() int {
	return len(s.kinds)
}

func (s Snapshot) IsEmpty() bool {
	return len(s.kinds) == 0
}

// Leaf returns the kind of the captured position itself.
func (s Snapshot) Leaf() (Kind, bool) {
	if len(s.kinds) == 0 {
		return "", false
	}
	return s.kinds[0], true
}

// Equal reports whether both snapshots hold the same kinds in the same order.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s.kinds) != len(other.kinds) {
		return false
	}
	for i := range s.kinds {
		if s.kinds[i] != other.kinds[i] {
			return false
		}
	}
	return true
}

// String renders the snapshot leaf-first, separated by " < ".
func (s Snapshot) String() string {
	parts := make([]string, len(s.kinds))
	for i, kind := range s.kinds {
		parts[i] = string(kind)
	}
	return strings.Join(parts, " < ")
}

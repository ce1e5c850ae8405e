package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCursor is a mutable parent chain, standing in for a host tree path.
type fakeCursor struct {
	kind   Kind
	parent *fakeCursor
}

func (c *fakeCursor) Kind() Kind {
	return c.kind
}

func (c *fakeCursor) Parent() Cursor {
	if c.parent == nil {
		return nil
	}
	return c.parent
}

func chain(kinds ...Kind) *fakeCursor {
	var root *fakeCursor
	var leaf *fakeCursor
	for i := len(kinds) - 1; i >= 0; i-- {
		leaf = &fakeCursor{kind: kinds[i], parent: root}
		root = leaf
	}
	return leaf
}

func TestCaptureIsLeafFirst(t *testing.T) {
	c := chain("MethodInvocation", "ExpressionStatement", "Block", "MethodDecl", "ClassDecl", "CompilationUnit")

	snap := Capture(c)

	assert.Equal(t, []Kind{"MethodInvocation", "ExpressionStatement", "Block", "MethodDecl", "ClassDecl", "CompilationUnit"}, snap.Kinds())
	assert.Equal(t, []Kind{"CompilationUnit", "ClassDecl", "MethodDecl", "Block", "ExpressionStatement", "MethodInvocation"}, snap.RootFirst())
	leaf, ok := snap.Leaf()
	require.True(t, ok)
	assert.Equal(t, Kind("MethodInvocation"), leaf)
}

func TestCaptureIsIndependentOfLiveCursor(t *testing.T) {
	c := chain("Identifier", "Block", "CompilationUnit")
	snap := Capture(c)

	c.kind = "Literal"
	c.parent.parent = nil

	assert.Equal(t, []Kind{"Identifier", "Block", "CompilationUnit"}, snap.Kinds())
}

func TestKindsReturnsCopy(t *testing.T) {
	snap := FromKinds("a", "b")
	kinds := snap.Kinds()
	kinds[0] = "mutated"

	assert.Equal(t, []Kind{"a", "b"}, snap.Kinds())
}

func TestCaptureNilCursor(t *testing.T) {
	snap := Capture(nil)
	assert.True(t, snap.IsEmpty())
	_, ok := snap.Leaf()
	assert.False(t, ok)
}

func TestEqualAndString(t *testing.T) {
	a := FromKinds("identifier", "block", "program")
	b := FromKinds("identifier", "block", "program")
	c := FromKinds("identifier", "program")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "identifier < block < program", a.String())
	assert.True(t, Snapshot{}.Equal(FromKinds()))
}

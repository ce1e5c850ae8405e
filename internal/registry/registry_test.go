package registry

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morozRed/sigtrack/internal/signature"
	"github.com/morozRed/sigtrack/internal/snapshot"
)

type description struct {
	check   string
	message string
}

func descriptionKey(d description) string {
	return d.check + " " + d.message
}

var nullDeref = description{check: "NullAway", message: "dereference of possibly-null value"}

func newTestRegistry(t *testing.T, opts ...Option) *Registry[string, description] {
	t.Helper()
	r, err := New[string, description](Identity, descriptionKey, opts...)
	require.NoError(t, err)
	return r
}

func TestBindWithoutRecordedContextIsAbsent(t *testing.T) {
	r := newTestRegistry(t)

	bound := r.BindDiagnostic("NullAway: something at Foo.java:1", nullDeref)
	assert.False(t, bound)

	_, ok := r.Signature("NullAway: something at Foo.java:1")
	assert.False(t, ok)
	assert.Equal(t, Stats{}, r.Stats())
}

func TestRecordBindLookup(t *testing.T) {
	r := newTestRegistry(t)
	context := snapshot.FromKinds("MethodInvocation", "ExpressionStatement", "Block", "MethodDecl", "ClassDecl", "CompilationUnit")
	diag := "NullAway: dereference of possibly-null value at Foo.java:42"

	r.RecordContext(nullDeref, context)
	require.True(t, r.BindDiagnostic(diag, nullDeref))

	sig, ok := r.Signature(diag)
	require.True(t, ok)
	assert.Equal(t, context.Kinds(), sig.Kinds())

	path, ok := sig.(*signature.PathSignature)
	require.True(t, ok)
	assert.True(t, path.Snapshot().Equal(context))
}

func TestRecordContextLastWriteWins(t *testing.T) {
	r := newTestRegistry(t)
	r.RecordContext(nullDeref, snapshot.FromKinds("Identifier", "CompilationUnit"))
	r.RecordContext(nullDeref, snapshot.FromKinds("Literal", "CompilationUnit"))

	require.True(t, r.BindDiagnostic("d", nullDeref))
	sig, ok := r.Signature("d")
	require.True(t, ok)
	assert.Equal(t, []snapshot.Kind{"Literal", "CompilationUnit"}, sig.Kinds())
	assert.Equal(t, 1, r.Stats().Pending)
}

func TestPendingContextIsReusedByDefault(t *testing.T) {
	r := newTestRegistry(t)
	r.RecordContext(nullDeref, snapshot.FromKinds("Identifier", "CompilationUnit"))

	require.True(t, r.BindDiagnostic("first", nullDeref))
	require.True(t, r.BindDiagnostic("second", nullDeref))

	assert.Equal(t, Stats{Pending: 1, Bound: 2}, r.Stats())
}

func TestEvictOnBindConsumesContext(t *testing.T) {
	r := newTestRegistry(t, WithEvictOnBind(true))
	r.RecordContext(nullDeref, snapshot.FromKinds("Identifier", "CompilationUnit"))

	require.True(t, r.BindDiagnostic("first", nullDeref))
	assert.False(t, r.BindDiagnostic("second", nullDeref))

	_, ok := r.Signature("second")
	assert.False(t, ok)
	assert.Equal(t, Stats{Pending: 0, Bound: 1}, r.Stats())
}

func TestPendingLimitDropsLeastRecentlyUsed(t *testing.T) {
	r := newTestRegistry(t, WithPendingLimit(2))
	a := description{check: "A", message: "a"}
	b := description{check: "B", message: "b"}
	c := description{check: "C", message: "c"}

	r.RecordContext(a, snapshot.FromKinds("a"))
	r.RecordContext(b, snapshot.FromKinds("b"))
	require.True(t, r.BindDiagnostic("touch-a", a))
	r.RecordContext(c, snapshot.FromKinds("c"))

	assert.Equal(t, 2, r.Stats().Pending)
	assert.True(t, r.BindDiagnostic("da", a))
	assert.False(t, r.BindDiagnostic("db", b))
	assert.True(t, r.BindDiagnostic("dc", c))
}

func TestClearEmptiesBothMappings(t *testing.T) {
	r := newTestRegistry(t)
	r.RecordContext(nullDeref, snapshot.FromKinds("Identifier"))
	require.True(t, r.BindDiagnostic("d", nullDeref))

	r.Clear()

	_, ok := r.Signature("d")
	assert.False(t, ok)
	assert.False(t, r.BindDiagnostic("d", nullDeref))
	assert.Equal(t, Stats{}, r.Stats())
}

func TestRecordCursorCapturesEagerly(t *testing.T) {
	r := newTestRegistry(t)
	leaf := &cursor{kind: "Identifier", parent: &cursor{kind: "CompilationUnit"}}

	r.RecordCursor(nullDeref, leaf)
	leaf.kind = "Mutated"
	leaf.parent = nil

	require.True(t, r.BindDiagnostic("d", nullDeref))
	sig, _ := r.Signature("d")
	assert.Equal(t, []snapshot.Kind{"Identifier", "CompilationUnit"}, sig.Kinds())
}

func TestSignaturesUseRegistryPolicy(t *testing.T) {
	r := newTestRegistry(t, WithPolicy(signature.ExactPolicy()))
	r.RecordContext(nullDeref, snapshot.FromKinds("Identifier", "Block", "CompilationUnit"))
	require.True(t, r.BindDiagnostic("d", nullDeref))

	sig, _ := r.Signature("d")
	other := signature.FromSnapshot(snapshot.FromKinds("Identifier", "Block", "Block", "CompilationUnit"), signature.DefaultPolicy())
	assert.False(t, sig.AreSame(other))
	assert.True(t, other.AreSame(sig))
	assert.Equal(t, signature.ExactPolicy(), r.Policy())
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New[string, description](Identity, descriptionKey, WithPolicy(signature.Policy{Mode: signature.ModeLCS}))
	assert.ErrorIs(t, err, signature.ErrInvalidPolicy)

	_, err = New[string, description](Identity, descriptionKey, WithPendingLimit(-1))
	assert.Error(t, err)

	_, err = New[string, description](nil, descriptionKey)
	assert.Error(t, err)
}

func TestLoggerReceivesDebugRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := newTestRegistry(t, WithLogger(logger))

	r.RecordContext(nullDeref, snapshot.FromKinds("Identifier"))
	r.BindDiagnostic("d", nullDeref)
	r.Clear()

	out := buf.String()
	assert.Contains(t, out, "recorded context")
	assert.Contains(t, out, "bound diagnostic")
	assert.Contains(t, out, "cleared registry")
}

func TestStringOfFingerprint(t *testing.T) {
	r, err := New[stringer, string](StringOf[stringer], Identity)
	require.NoError(t, err)

	r.RecordContext("desc", snapshot.FromKinds("Identifier"))
	require.True(t, r.BindDiagnostic(stringer{id: 7}, "desc"))

	_, ok := r.Signature(stringer{id: 7})
	assert.True(t, ok)
	_, ok = r.Signature(stringer{id: 8})
	assert.False(t, ok)
}

type stringer struct{ id int }

func (s stringer) String() string { return "diag-" + string(rune('0'+s.id)) }

type cursor struct {
	kind   snapshot.Kind
	parent *cursor
}

func (c *cursor) Kind() snapshot.Kind { return c.kind }

func (c *cursor) Parent() snapshot.Cursor {
	if c.parent == nil {
		return nil
	}
	return c.parent
}

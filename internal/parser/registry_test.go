package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morozRed/sigtrack/internal/snapshot"
)

type mockParser struct {
	lang string
	exts []string
}

func (m mockParser) Language() string {
	return m.lang
}

func (m mockParser) Extensions() []string {
	return m.exts
}

func (m mockParser) Grammar() *sitter.Language {
	return golang.GetLanguage()
}

func newGoRegistry() *Registry {
	r := NewRegistry()
	r.Register(mockParser{lang: "go", exts: []string{".go"}})
	return r
}

func TestRegistryGetParserForFile(t *testing.T) {
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})

	p, ok := r.GetParserForFile("demo.MOCK")
	require.True(t, ok, "expected parser for .MOCK extension")
	assert.Equal(t, "mock", p.Language())

	_, ok = r.GetParserForFile("demo.txt")
	assert.False(t, ok)
	assert.Equal(t, []string{".mock"}, r.SupportedExtensions())
}

func TestParseFileUnsupported(t *testing.T) {
	_, err := newGoRegistry().ParseFile(context.Background(), "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestCaptureAtCallSite(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "demo.go")
	mustWriteFile(t, path, "package demo\n\nfunc run() {\n\tprintln(\"x\")\n}\n")

	file, err := newGoRegistry().ParseFile(context.Background(), path)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "go", file.Language)

	snap, err := file.CaptureAt(4, 2)
	require.NoError(t, err)

	kinds := snap.Kinds()
	require.GreaterOrEqual(t, len(kinds), 4)
	assert.Equal(t, snapshot.Kind("identifier"), kinds[0])
	assert.Equal(t, snapshot.Kind("call_expression"), kinds[1])
	assert.Contains(t, kinds, snapshot.Kind("function_declaration"))
	assert.Equal(t, snapshot.Kind("source_file"), kinds[len(kinds)-1])
}

func TestNodeAtRejectsBadPositions(t *testing.T) {
	file, err := newGoRegistry().Parse(context.Background(), "demo.go", []byte("package demo\n"))
	require.NoError(t, err)

	_, err = file.NodeAt(0, 1)
	assert.ErrorIs(t, err, ErrPositionOutOfRange)

	_, err = file.NodeAt(2, 1)
	assert.ErrorIs(t, err, ErrPositionOutOfRange, "line past the end")
	_, err = file.NodeAt(500, 3)
	assert.ErrorIs(t, err, ErrPositionOutOfRange, "line far past the end")
	_, err = file.NodeAt(1, 14)
	assert.ErrorIs(t, err, ErrPositionOutOfRange, "column past the end of the line")

	_, err = file.NodeAt(1, 12)
	assert.NoError(t, err, "last column of the line")

	file.Close()
	_, err = file.NodeAt(1, 1)
	assert.Error(t, err)
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

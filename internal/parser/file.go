package parser

import (
	"bytes"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/morozRed/sigtrack/internal/snapshot"
)

// ErrPositionOutOfRange is returned for lines or columns below 1.
var ErrPositionOutOfRange = errors.New("position out of range")

// File is a parsed source file. Nodes and cursors obtained from it are only
// valid until Close.
type File struct {
	Path     string
	Language string
	Content  []byte

	tree *sitter.Tree
}

func (f *File) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// NodeAt returns the smallest named node covering the 1-based line and
// column. Columns count bytes.
func (f *File) NodeAt(line, column int64) (*sitter.Node, error) {
	if f.tree == nil {
		return nil, fmt.Errorf("%s: file already closed", f.Path)
	}
	if line < 1 || column < 1 {
		return nil, fmt.Errorf("%w: %s:%d:%d", ErrPositionOutOfRange, f.Path, line, column)
	}

	if width, ok := lineWidth(f.Content, line); !ok || column > max(width, 1) {
		return nil, fmt.Errorf("%w: %s:%d:%d", ErrPositionOutOfRange, f.Path, line, column)
	}

	point := sitter.Point{Row: uint32(line - 1), Column: uint32(column - 1)}
	node := f.tree.RootNode().NamedDescendantForPointRange(point, point)
	if node == nil {
		return nil, fmt.Errorf("%w: %s:%d:%d", ErrPositionOutOfRange, f.Path, line, column)
	}
	return node, nil
}

// lineWidth returns the byte length of the 1-based line, without its line
// terminator. A trailing newline does not start another line.
func lineWidth(content []byte, line int64) (int, bool) {
	for n := int64(1); len(content) > 0; n++ {
		end := bytes.IndexByte(content, '\n')
		current := content
		if end >= 0 {
			current = content[:end]
		}
		if n == line {
			return len(bytes.TrimSuffix(current, []byte("\r"))), true
		}
		if end < 0 {
			break
		}
		content = content[end+1:]
	}
	return 0, false
}

// CursorAt returns a cursor on the node at line and column.
func (f *File) CursorAt(line, column int64) (snapshot.Cursor, error) {
	node, err := f.NodeAt(line, column)
	if err != nil {
		return nil, err
	}
	return NodeCursor{node: node}, nil
}

// CaptureAt captures the path from the node at line and column to the root.
func (f *File) CaptureAt(line, column int64) (snapshot.Snapshot, error) {
	cursor, err := f.CursorAt(line, column)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	return snapshot.Capture(cursor), nil
}

// NodeCursor walks a tree-sitter node towards the root.
type NodeCursor struct {
	node *sitter.Node
}

func (c NodeCursor) Kind() snapshot.Kind {
	return snapshot.Kind(c.node.Type())
}

func (c NodeCursor) Parent() snapshot.Cursor {
	parent := c.node.Parent()
	if parent == nil {
		return nil
	}
	return NodeCursor{node: parent}
}

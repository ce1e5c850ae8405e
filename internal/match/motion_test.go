package match

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morozRed/sigtrack/internal/diagnostic"
)

var classLines = []string{
	"class Foo {",
	"  int count;",
	"  void run(Object o) {",
	"    o.toString();",
	"  }",
	"}",
}

func withLine(lines []string, at int, line string) []string {
	out := append([]string{}, lines[:at]...)
	out = append(out, line)
	return append(out, lines[at:]...)
}

func withoutLine(lines []string, at int) []string {
	out := append([]string{}, lines[:at]...)
	return append(out, lines[at+1:]...)
}

func TestLineTrackerInsertedHunk(t *testing.T) {
	tracker := NewLineTracker(classLines, withLine(classLines, 1, "  String name;"))

	for old, want := range map[int64]int64{1: 1, 2: 3, 3: 4, 4: 5, 6: 7} {
		got, ok := tracker.NewLine(old)
		require.True(t, ok, "line %d", old)
		assert.Equal(t, want, got, "line %d", old)
	}
}

func TestLineTrackerDeletedHunk(t *testing.T) {
	tracker := NewLineTracker(classLines, withoutLine(classLines, 1))

	_, ok := tracker.NewLine(2)
	assert.False(t, ok, "deleted line has no new position")

	got, ok := tracker.NewLine(4)
	require.True(t, ok)
	assert.Equal(t, int64(3), got)
}

func TestLineTrackerChangedHunk(t *testing.T) {
	changed := append([]string{}, classLines...)
	changed[3] = "    o.hashCode();"
	tracker := NewLineTracker(classLines, changed)

	_, ok := tracker.NewLine(4)
	assert.False(t, ok, "edited line is not tracked")

	got, ok := tracker.NewLine(5)
	require.True(t, ok)
	assert.Equal(t, int64(5), got)
}

func TestLineTrackerOutOfRange(t *testing.T) {
	tracker := NewLineTracker(classLines, classLines)

	_, ok := tracker.NewLine(0)
	assert.False(t, ok)
	_, ok = tracker.NewLine(int64(len(classLines) + 1))
	assert.False(t, ok)
}

func TestLineMotionComparer(t *testing.T) {
	oldRoot, newRoot := t.TempDir(), t.TempDir()
	writeLines(t, filepath.Join(oldRoot, "src", "Foo.java"), classLines)
	writeLines(t, filepath.Join(newRoot, "src", "Foo.java"), withLine(classLines, 1, "  String name;"))

	cmp := LineMotion(oldRoot, newRoot, nil)
	old := diagnostic.New("src/Foo.java", 4, 5, "[NullAway] deref")

	assert.True(t, cmp.AreSame(old, diagnostic.New("src/Foo.java", 5, 5, "[NullAway] deref")))
	assert.False(t, cmp.AreSame(old, diagnostic.New("src/Foo.java", 4, 5, "[NullAway] deref")), "stale line")
	assert.False(t, cmp.AreSame(old, diagnostic.New("src/Foo.java", 5, 6, "[NullAway] deref")), "other column")
	assert.False(t, cmp.AreSame(old, diagnostic.New("src/Foo.java", 5, 5, "[Other] deref")), "other type")
	assert.False(t, cmp.AreSame(
		diagnostic.New("src/Missing.java", 4, 5, "[NullAway] deref"),
		diagnostic.New("src/Missing.java", 5, 5, "[NullAway] deref")), "unreadable file")
}

func TestMatchWithLineMotion(t *testing.T) {
	oldRoot, newRoot := t.TempDir(), t.TempDir()
	writeLines(t, filepath.Join(oldRoot, "Foo.java"), classLines)
	writeLines(t, filepath.Join(newRoot, "Bar.java"), withLine(classLines, 0, "import java.util.List;"))

	old := &diagnostic.Dataset{Diagnostics: []diagnostic.Diagnostic{
		diagnostic.New("Foo.java", 4, 5, "[NullAway] deref"),
		diagnostic.New("Foo.java", 2, 3, "[Unused] count"),
	}}
	new := &diagnostic.Dataset{Diagnostics: []diagnostic.Diagnostic{
		diagnostic.New("Bar.java", 5, 5, "[NullAway] deref"),
		diagnostic.New("Bar.java", 3, 3, "[Unused] count"),
	}}
	renames := NewRenames()
	renames.Move("Foo.java", "Bar.java")

	results := NewMatcher(LineMotion(oldRoot, newRoot, nil), WithPaths(renames)).Match(old, new)
	assert.Len(t, results.Matched, 2)
	assert.Empty(t, results.UnmatchedOld)
	assert.Empty(t, results.UnmatchedNew)
}

func writeLines(t *testing.T, path string, lines []string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

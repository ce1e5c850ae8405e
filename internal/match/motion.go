package match

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/morozRed/sigtrack/internal/diagnostic"
	"github.com/morozRed/sigtrack/internal/logging"
)

// LineTracker maps line numbers of an old file to the new file through a
// line diff. A line is tracked only while its text is unchanged: lines that
// were deleted, or edited in place, have no new line.
type LineTracker struct {
	oldLines []string
	newLines []string
	opcodes  []difflib.OpCode
}

func NewLineTracker(oldLines, newLines []string) *LineTracker {
	// Autojunk would treat frequent lines such as "}" as noise.
	matcher := difflib.NewMatcherWithJunk(oldLines, newLines, false, nil)
	return &LineTracker{
		oldLines: oldLines,
		newLines: newLines,
		opcodes:  matcher.GetOpCodes(),
	}
}

// NewLine returns the 1-based line that old line now occupies.
func (t *LineTracker) NewLine(line int64) (int64, bool) {
	idx := int(line - 1)
	if idx < 0 || idx >= len(t.oldLines) {
		return 0, false
	}
	for _, op := range t.opcodes {
		if idx < op.I1 || idx >= op.I2 {
			continue
		}
		switch op.Tag {
		case 'e':
			return int64(op.J1+idx-op.I1) + 1, true
		case 'r':
			// A changed hunk may still carry the line verbatim.
			for j := op.J1; j < op.J2; j++ {
				if t.newLines[j] == t.oldLines[idx] {
					return int64(j) + 1, true
				}
			}
			return 0, false
		default:
			return 0, false
		}
	}
	return 0, false
}

// LineMotionComparer matches diagnostics of the same type whose old line
// moved to the new diagnostic's line and whose column is unchanged. Source
// files are read from the two revision roots, once per file pair.
type LineMotionComparer struct {
	oldRoot  string
	newRoot  string
	logger   *slog.Logger
	trackers map[string]*LineTracker
}

func LineMotion(oldRoot, newRoot string, logger *slog.Logger) *LineMotionComparer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &LineMotionComparer{
		oldRoot:  oldRoot,
		newRoot:  newRoot,
		logger:   logger,
		trackers: make(map[string]*LineTracker),
	}
}

func (c *LineMotionComparer) AreSame(old, new diagnostic.Diagnostic) bool {
	if !old.SameType(new) || old.Column != new.Column {
		return false
	}
	if old.Line == diagnostic.NoPosition || new.Line == diagnostic.NoPosition {
		return false
	}
	tracker := c.tracker(old.File, new.File)
	if tracker == nil {
		return false
	}
	line, ok := tracker.NewLine(old.Line)
	return ok && line == new.Line
}

// tracker returns nil, and remembers it, when either file cannot be read.
func (c *LineMotionComparer) tracker(oldFile, newFile string) *LineTracker {
	key := oldFile + "\x00" + newFile
	if tracker, ok := c.trackers[key]; ok {
		return tracker
	}

	var tracker *LineTracker
	oldLines, oldErr := readLines(filepath.Join(c.oldRoot, oldFile))
	newLines, newErr := readLines(filepath.Join(c.newRoot, newFile))
	switch {
	case oldErr != nil:
		c.logger.Warn("cannot track line motion", "file", oldFile, "error", oldErr)
	case newErr != nil:
		c.logger.Warn("cannot track line motion", "file", newFile, "error", newErr)
	default:
		tracker = NewLineTracker(oldLines, newLines)
	}
	c.trackers[key] = tracker
	return tracker
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSuffix(data, []byte("\n"))
	if len(data) == 0 {
		return nil, nil
	}
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, nil
}

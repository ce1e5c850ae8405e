package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// progressReporter draws a one-line spinner while source files are parsed.
// It stays silent unless w is a terminal.
type progressReporter struct {
	w       io.Writer
	enabled bool
	label   string
	total   int
	start   time.Time
	spinner int
	lastLen int
}

func newProgressReporter(w io.Writer, label string, total int, asJSON bool) *progressReporter {
	enabled := false
	if f, ok := w.(*os.File); ok && !asJSON {
		stat, err := f.Stat()
		enabled = err == nil && (stat.Mode()&os.ModeCharDevice) != 0
	}
	return &progressReporter{
		w:       w,
		enabled: enabled,
		label:   label,
		total:   total,
		start:   time.Now(),
	}
}

func (r *progressReporter) Update(file string, count int) {
	if !r.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	file = strings.TrimSpace(file)
	if len(file) > 88 {
		file = "..." + file[len(file)-85:]
	}

	status := fmt.Sprintf("%s %s %d/%d %s", frame, r.label, count, r.total, file)
	r.printStatus(status)
}

func (r *progressReporter) Done(count int) {
	if !r.enabled {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	r.printStatus(fmt.Sprintf("%s: %d files in %s", r.label, count, elapsed))
	fmt.Fprintln(r.w)
}

func (r *progressReporter) printStatus(status string) {
	if r.lastLen > len(status) {
		status += strings.Repeat(" ", r.lastLen-len(status))
	}
	r.lastLen = len(status)
	fmt.Fprintf(r.w, "\r%s", status)
}

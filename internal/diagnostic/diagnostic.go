// Package diagnostic holds the diagnostics exchanged with an analysis host
// and the dataset files they are recorded in.
package diagnostic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/morozRed/sigtrack/internal/signature"
)

// NoPosition marks an offset or line the host did not report.
const NoPosition int64 = -1

// Description is what a checker reports before the host turns it into a
// diagnostic: the check name and the raw message.
type Description struct {
	Check   string `json:"check"`
	Message string `json:"message"`
}

// Fingerprint is the registry key of a description.
func (d Description) Fingerprint() string {
	return d.Check + " " + d.Message
}

func (d Description) String() string {
	return d.Fingerprint()
}

// Diagnostic is one reported finding at a source location.
type Diagnostic struct {
	File     string `json:"file"`
	Line     int64  `json:"line"`
	Column   int64  `json:"column"`
	StartPos int64  `json:"start_pos"`
	Pos      int64  `json:"pos"`
	EndPos   int64  `json:"end_pos"`
	Message  string `json:"message"`

	Signature signature.Signature `json:"-"`
}

// MarshalJSON writes the signature in its text form.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	type plain Diagnostic
	return json.Marshal(struct {
		plain
		Signature string `json:"signature,omitempty"`
	}{plain: plain(d), Signature: d.SignatureText()})
}

// New returns a diagnostic with unknown offsets.
func New(file string, line, column int64, message string) Diagnostic {
	return Diagnostic{
		File:     file,
		Line:     line,
		Column:   column,
		StartPos: NoPosition,
		Pos:      NoPosition,
		EndPos:   NoPosition,
		Message:  message,
	}
}

// Key identifies the diagnostic by location and message. It ignores the
// signature, so it is stable before and after binding.
func (d Diagnostic) Key() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Message)
}

// identity covers every field but the signature.
func (d Diagnostic) identity() string {
	return fmt.Sprintf("%s\x00%d\x00%d\x00%d", d.Key(), d.StartPos, d.Pos, d.EndPos)
}

// Type is the check name in a "[Check] message" diagnostic, or "" when the
// message has no such prefix.
func (d Diagnostic) Type() string {
	return ExtractType(d.Message)
}

// Description recovers the description the diagnostic was reported from.
func (d Diagnostic) Description() Description {
	check := d.Type()
	message := firstLine(d.Message)
	if check != "" {
		message = strings.TrimSpace(strings.TrimPrefix(message, "["+check+"]"))
	}
	return Description{Check: check, Message: message}
}

func (d Diagnostic) SameType(other Diagnostic) bool {
	return d.Type() == other.Type()
}

// RefersToSameSource compares everything but the file name, which may differ
// after a rename.
func (d Diagnostic) RefersToSameSource(other Diagnostic) bool {
	return d.Line == other.Line &&
		d.Column == other.Column &&
		d.StartPos == other.StartPos &&
		d.Pos == other.Pos &&
		d.EndPos == other.EndPos &&
		d.Message == other.Message
}

// SignatureText returns the textual signature, or "" when unbound.
func (d Diagnostic) SignatureText() string {
	if d.Signature == nil {
		return ""
	}
	return d.Signature.String()
}

// String renders the diagnostic as a dataset block.
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(blockMarker)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%s %d %d %d %d %d\n", d.File, d.Line, d.Column, d.StartPos, d.Pos, d.EndPos)
	b.WriteString(d.Message)
	b.WriteByte('\n')
	if d.Signature != nil {
		b.WriteString(signatureLinePrefix)
		b.WriteString(d.Signature.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// ExtractType returns the text between a leading '[' and the first ']'.
func ExtractType(message string) string {
	if !strings.HasPrefix(message, "[") {
		return ""
	}
	end := strings.IndexByte(message, ']')
	if end < 0 {
		return ""
	}
	return message[1:end]
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

package diagnostic

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/morozRed/sigtrack/internal/fileutil"
	"github.com/morozRed/sigtrack/internal/signature"
)

const (
	blockMarker         = "----DIAGNOSTIC"
	signatureLinePrefix = "Signature "
)

// ErrMalformedDataset is wrapped by every dataset parse failure.
var ErrMalformedDataset = errors.New("malformed diagnostics dataset")

// Dataset is the set of diagnostics one scan reported at a commit.
type Dataset struct {
	CommitID    string       `json:"commit_id"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// LoadDataset reads a dataset file. Signatures found in the file compare
// with policy.
func LoadDataset(path string, policy signature.Policy) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()

	dataset, err := ReadDataset(f, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return dataset, nil
}

// ReadDataset parses the header line "<commit> [count]" followed by
// diagnostic blocks. A count that disagrees with the blocks is an error.
// Duplicate blocks are dropped after counting.
func ReadDataset(r io.Reader, policy signature.Policy) (*Dataset, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lines := make([]string, 0, 64)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedDataset)
	}

	header := strings.Fields(lines[0])
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: empty header", ErrMalformedDataset)
	}
	expected := -1
	if len(header) > 1 {
		n, err := strconv.Atoi(header[1])
		if err != nil {
			return nil, fmt.Errorf("%w: bad diagnostic count %q", ErrMalformedDataset, header[1])
		}
		expected = n
	}

	dataset := &Dataset{CommitID: header[0], Diagnostics: make([]Diagnostic, 0)}
	// Repeated blocks describe one diagnostic; only the first is kept.
	seen := make(map[string]bool)
	blocks := 0
	for i := 1; i < len(lines); {
		if lines[i] != blockMarker {
			if strings.TrimSpace(lines[i]) == "" {
				i++
				continue
			}
			return nil, fmt.Errorf("%w: line %d: expected %q", ErrMalformedDataset, i+1, blockMarker)
		}

		end := i + 1
		for end < len(lines) && lines[end] != blockMarker {
			end++
		}
		diag, err := parseBlock(lines[i+1:end], policy)
		if err != nil {
			return nil, fmt.Errorf("%w: block at line %d: %v", ErrMalformedDataset, i+1, err)
		}
		blocks++
		if id := diag.identity(); !seen[id] {
			seen[id] = true
			dataset.Diagnostics = append(dataset.Diagnostics, diag)
		}
		i = end
	}

	if expected >= 0 && expected != blocks {
		return nil, fmt.Errorf("%w: header announces %d diagnostics, found %d",
			ErrMalformedDataset, expected, blocks)
	}
	return dataset, nil
}

func parseBlock(block []string, policy signature.Policy) (Diagnostic, error) {
	if len(block) == 0 {
		return Diagnostic{}, errors.New("missing location line")
	}
	diag, err := parseLocation(block[0])
	if err != nil {
		return Diagnostic{}, err
	}

	body := block[1:]
	for len(body) > 0 && body[len(body)-1] == "" {
		body = body[:len(body)-1]
	}
	if n := len(body); n > 0 && strings.HasPrefix(body[n-1], signatureLinePrefix+signature.TextPrefix) {
		sig, err := signature.Parse(strings.TrimPrefix(body[n-1], signatureLinePrefix), policy)
		if err != nil {
			return Diagnostic{}, err
		}
		diag.Signature = sig
		body = body[:n-1]
	}
	diag.Message = strings.Join(body, "\n")
	return diag, nil
}

// parseLocation accepts "file line col", "file line col start end" and
// "file line col start pos end".
func parseLocation(line string) (Diagnostic, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 && len(fields) != 5 && len(fields) != 6 {
		return Diagnostic{}, fmt.Errorf("unexpected location %q", line)
	}

	numbers := make([]int64, 0, len(fields)-1)
	for _, field := range fields[1:] {
		n, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return Diagnostic{}, fmt.Errorf("bad number %q in location %q", field, line)
		}
		numbers = append(numbers, n)
	}

	diag := New(fields[0], numbers[0], numbers[1], "")
	switch len(numbers) {
	case 4:
		diag.StartPos, diag.EndPos = numbers[2], numbers[3]
	case 5:
		diag.StartPos, diag.Pos, diag.EndPos = numbers[2], numbers[3], numbers[4]
	}
	return diag, nil
}

// WriteTo writes the dataset in the format ReadDataset accepts.
func (d *Dataset) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", d.CommitID, len(d.Diagnostics))
	for _, diag := range d.Diagnostics {
		b.WriteString(diag.String())
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// Save writes the dataset to path, leaving the file untouched when the
// content is unchanged.
func (d *Dataset) Save(path string) error {
	var b strings.Builder
	if _, err := d.WriteTo(&b); err != nil {
		return err
	}
	if err := fileutil.WriteIfChanged(path, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to write dataset %s: %w", path, err)
	}
	return nil
}

// Filter keeps the diagnostics keep accepts, in order.
func (d *Dataset) Filter(keep func(Diagnostic) bool) {
	out := d.Diagnostics[:0]
	for _, diag := range d.Diagnostics {
		if keep(diag) {
			out = append(out, diag)
		}
	}
	d.Diagnostics = out
}

// Files lists the distinct files, in first-seen order.
func (d *Dataset) Files() []string {
	files := make([]string, 0)
	for _, diag := range d.Diagnostics {
		files = append(files, diag.File)
	}
	return fileutil.DedupeStrings(files)
}

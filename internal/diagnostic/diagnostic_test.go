package diagnostic

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morozRed/sigtrack/internal/signature"
	"github.com/morozRed/sigtrack/internal/snapshot"
)

func TestExtractType(t *testing.T) {
	tests := map[string]string{
		"[NullAway] dereference of possibly-null value":    "NullAway",
		"[DeadException] Exception created but not thrown": "DeadException",
		"plain message":  "",
		"[unterminated":  "",
		"x [NotLeading]": "",
	}
	for message, want := range tests {
		assert.Equal(t, want, ExtractType(message), message)
	}
}

func TestDescriptionFromDiagnostic(t *testing.T) {
	d := New("Foo.java", 42, 7, "[NullAway] dereference of possibly-null value\n    (see https://example.com)")

	desc := d.Description()
	assert.Equal(t, Description{Check: "NullAway", Message: "dereference of possibly-null value"}, desc)
	assert.Equal(t, "NullAway dereference of possibly-null value", desc.Fingerprint())
}

func TestKeyIgnoresSignature(t *testing.T) {
	d := New("Foo.java", 42, 7, "[NullAway] msg")
	before := d.Key()
	d.Signature = signature.FromSnapshot(snapshot.FromKinds("identifier"), signature.DefaultPolicy())

	assert.Equal(t, before, d.Key())
	assert.Equal(t, "Foo.java:42:7: [NullAway] msg", before)
}

func TestRefersToSameSourceIgnoresFile(t *testing.T) {
	a := New("old/Foo.java", 3, 4, "[X] m")
	b := New("new/Foo.java", 3, 4, "[X] m")
	c := New("old/Foo.java", 3, 5, "[X] m")

	assert.True(t, a.RefersToSameSource(b))
	assert.False(t, a.RefersToSameSource(c))
	assert.True(t, a.SameType(c))
}

const sampleDataset = `abc123 2
----DIAGNOSTIC
src/Foo.java 42 7 100 105 120
[NullAway] dereference of possibly-null value
    (see https://example.com)
Signature TreeSignature:identifier,method_invocation,expression_statement,block,method_declaration,class_body,class_declaration,program
----DIAGNOSTIC
src/Bar.java 3 1 10 20
[UnusedVariable] unused
`

func TestReadDataset(t *testing.T) {
	dataset, err := ReadDataset(strings.NewReader(sampleDataset), signature.DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, "abc123", dataset.CommitID)
	require.Len(t, dataset.Diagnostics, 2)

	first := dataset.Diagnostics[0]
	assert.Equal(t, "src/Foo.java", first.File)
	assert.Equal(t, int64(42), first.Line)
	assert.Equal(t, int64(7), first.Column)
	assert.Equal(t, int64(105), first.Pos)
	assert.Equal(t, "[NullAway] dereference of possibly-null value\n    (see https://example.com)", first.Message)
	require.NotNil(t, first.Signature)
	assert.Equal(t, snapshot.Kind("identifier"), first.Signature.Kinds()[0])

	second := dataset.Diagnostics[1]
	assert.Equal(t, int64(10), second.StartPos)
	assert.Equal(t, NoPosition, second.Pos)
	assert.Equal(t, int64(20), second.EndPos)
	assert.Nil(t, second.Signature)
	assert.Equal(t, []string{"src/Foo.java", "src/Bar.java"}, dataset.Files())
}

func TestReadDatasetWithoutCount(t *testing.T) {
	dataset, err := ReadDataset(strings.NewReader("deadbeef\n----DIAGNOSTIC\nA.java 1 2\n[X] m\n"), signature.DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, dataset.Diagnostics, 1)
	assert.Equal(t, NoPosition, dataset.Diagnostics[0].StartPos)
}

func TestReadDatasetRejectsMalformed(t *testing.T) {
	inputs := map[string]string{
		"empty":          "",
		"count mismatch": "abc 3\n----DIAGNOSTIC\nA.java 1 2\n[X] m\n",
		"bad count":      "abc x\n",
		"bad location":   "abc 1\n----DIAGNOSTIC\nA.java one 2\n[X] m\n",
		"stray text":     "abc 1\nnot a block\n",
		"bad signature":  "abc 1\n----DIAGNOSTIC\nA.java 1 2\n[X] m\nSignature Nope\n",
	}
	for name, input := range inputs {
		_, err := ReadDataset(strings.NewReader(input), signature.DefaultPolicy())
		assert.ErrorIs(t, err, ErrMalformedDataset, name)
	}
}

func TestDatasetSaveLoadRoundTrip(t *testing.T) {
	original, err := ReadDataset(strings.NewReader(sampleDataset), signature.DefaultPolicy())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "scan.diag")
	require.NoError(t, original.Save(path))

	loaded, err := LoadDataset(path, signature.DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, loaded.Diagnostics, len(original.Diagnostics))
	for i := range original.Diagnostics {
		assert.Equal(t, original.Diagnostics[i].Key(), loaded.Diagnostics[i].Key())
		assert.True(t, original.Diagnostics[i].RefersToSameSource(loaded.Diagnostics[i]))
		assert.Equal(t, original.Diagnostics[i].SignatureText(), loaded.Diagnostics[i].SignatureText())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "abc123 2\n----DIAGNOSTIC\n"))
}

func TestDatasetFilter(t *testing.T) {
	dataset, err := ReadDataset(strings.NewReader(sampleDataset), signature.DefaultPolicy())
	require.NoError(t, err)

	dataset.Filter(func(d Diagnostic) bool { return d.Type() == "UnusedVariable" })
	require.Len(t, dataset.Diagnostics, 1)
	assert.Equal(t, "src/Bar.java", dataset.Diagnostics[0].File)
}

func TestReadDatasetKeepsSignatureWordInMessage(t *testing.T) {
	input := "abc 1\n----DIAGNOSTIC\nFoo.java 3 5 -1 -1 -1\n[Check] first line\nSignature mismatch in override\n"

	dataset, err := ReadDataset(strings.NewReader(input), signature.DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, dataset.Diagnostics, 1)

	diag := dataset.Diagnostics[0]
	assert.Nil(t, diag.Signature)
	assert.Equal(t, "[Check] first line\nSignature mismatch in override", diag.Message)
}

func TestReadDatasetDropsDuplicateBlocks(t *testing.T) {
	block := "----DIAGNOSTIC\nFoo.java 3 5 10 12 14\n[NullAway] deref\n"
	moved := "----DIAGNOSTIC\nFoo.java 3 5 10 13 14\n[NullAway] deref\n"

	dataset, err := ReadDataset(strings.NewReader("abc 3\n"+block+block+moved), signature.DefaultPolicy())
	require.NoError(t, err)

	require.Len(t, dataset.Diagnostics, 2)
	assert.Equal(t, int64(12), dataset.Diagnostics[0].Pos)
	assert.Equal(t, int64(13), dataset.Diagnostics[1].Pos)
}

package translator

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/mika-go/internal/failure"
)

var fixedNow = func() time.Time {
	return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
}

const helloSource = `#include <System>

// entry point
function main() {
    var x = 5 // five
    print("x = %d\n", x);
    return 993;
}
`

const helloHeader = "// ============================================================================\n" +
	"// Code generated by Mika Language Transpiler v1.1.0. DO NOT EDIT.\n" +
	"// Source file: hello.mk\n" +
	"// Generated at: 2026-10-14T09:30:00Z\n" +
	"// ============================================================================\n\n"

func newTestTranslator(fs afero.Fs) *Translator {
	tr := New(fs, nil)
	tr.Now = fixedNow
	return tr
}

func TestTranslateStream(t *testing.T) {
	tr := newTestTranslator(afero.NewMemMapFs())

	var out bytes.Buffer
	lines, err := tr.TranslateStream(strings.NewReader(helloSource), &out, "hello.mk")
	require.NoError(t, err)
	assert.Equal(t, 8, lines)

	want := helloHeader +
		"#include <stdio.h>\n" +
		"#include <stdlib.h>\n" +
		"#include <string.h>\n" +
		"#include <stdbool.h>\n" +
		"#include \"/usr/local/include/mika/mika_std.h\"\n\n" +
		"\n" +
		"\n" +
		"int main() {\n" +
		"    int x = 5 \n" +
		"    printf(\"x = %d\\n\", x);\n" +
		"    return 0;\n" +
		"}\n"
	assert.Equal(t, want, out.String())
}

func TestTranslateStreamPassThrough(t *testing.T) {
	tr := newTestTranslator(afero.NewMemMapFs())

	src := "x = x + 1;\n   \n}\nlast line without newline"
	var out bytes.Buffer
	lines, err := tr.TranslateStream(strings.NewReader(src), &out, "p.mk")
	require.NoError(t, err)
	assert.Equal(t, 4, lines)

	body := strings.SplitN(out.String(), "=\n\n", 2)
	require.Len(t, body, 2)
	assert.Equal(t, src, body[1])
}

func TestTranslateStreamEmptyInput(t *testing.T) {
	tr := newTestTranslator(afero.NewMemMapFs())

	var out bytes.Buffer
	lines, err := tr.TranslateStream(strings.NewReader(""), &out, "hello.mk")
	require.NoError(t, err)
	assert.Equal(t, 0, lines)
	assert.Equal(t, helloHeader, out.String())
}

func TestTranslateFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "hello.mk", []byte(helloSource), 0o644))

	tr := newTestTranslator(fs)
	unit, err := NewUnit("hello.mk", "")
	require.NoError(t, err)
	assert.Equal(t, "hello.c", unit.Output)

	lines, err := tr.Translate(unit)
	require.NoError(t, err)
	assert.Equal(t, 8, lines)

	data, err := afero.ReadFile(fs, "hello.c")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), helloHeader))
	assert.Contains(t, string(data), "int main() {\n")
}

func TestTranslateMissingInput(t *testing.T) {
	fs := afero.NewMemMapFs()
	tr := newTestTranslator(fs)

	_, err := tr.Translate(Unit{Input: "missing.mk", Output: "missing.c"})
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrIO)

	exists, _ := afero.Exists(fs, "missing.c")
	assert.False(t, exists, "no output should be created when the input cannot be opened")
}

func TestTranslateUnwritableOutput(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "hello.mk", []byte(helloSource), 0o644))
	tr := newTestTranslator(afero.NewReadOnlyFs(base))

	_, err := tr.Translate(Unit{Input: "hello.mk", Output: "hello.c"})
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrIO)
	assert.NotErrorIs(t, err, failure.ErrStage)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestTranslateStreamWriteError(t *testing.T) {
	tr := newTestTranslator(afero.NewMemMapFs())

	_, err := tr.TranslateStream(strings.NewReader(strings.Repeat("var x = 1\n", 10000)), failingWriter{}, "big.mk")
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrIO)
}

func TestNewUnit(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		output     string
		wantOutput string
		wantErr    bool
	}{
		{name: "derived", input: "prog.mk", wantOutput: "prog.c"},
		{name: "nested", input: "src/app/prog.mk", wantOutput: "src/app/prog.c"},
		{name: "dotted dir", input: "v1.2/prog.mk", wantOutput: "v1.2/prog.c"},
		{name: "override", input: "prog.mk", output: "out/x.c", wantOutput: "out/x.c"},
		{name: "wrong extension", input: "prog.txt", wantErr: true},
		{name: "no extension", input: "prog", wantErr: true},
		{name: "extension prefix only", input: "prog.mkx", wantErr: true},
		{name: "upper case", input: "prog.MK", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := NewUnit(tt.input, tt.output)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, failure.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, unit.Input)
			assert.Equal(t, tt.wantOutput, unit.Output)
		})
	}
}

func TestStem(t *testing.T) {
	assert.Equal(t, "hello", Stem("hello.mk"))
	assert.Equal(t, "dir/hello", Stem("dir/hello.mk"))
	assert.Equal(t, "noext", Stem("noext"))
}

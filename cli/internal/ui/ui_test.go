package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/mika-go/build"
)

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	origOut, origErr, origNoColor := Out, Err, color.NoColor
	var out, errOut bytes.Buffer
	Out, Err = &out, &errOut
	color.NoColor = true
	t.Cleanup(func() {
		Out, Err, color.NoColor = origOut, origErr, origNoColor
	})
	return &out, &errOut
}

var _ build.Reporter = Reporter{}

func TestMessages(t *testing.T) {
	out, errOut := capture(t)

	PrintSuccess("%s -> %s", "hello.mk", "hello")
	PrintWarning("careful")
	PrintInfo("note %d", 1)
	PrintError("broken: %s", "gcc")

	assert.Contains(t, out.String(), "✓ hello.mk -> hello")
	assert.Contains(t, out.String(), "⚠ careful")
	assert.Contains(t, out.String(), "ℹ note 1")
	assert.NotContains(t, out.String(), "broken")
	assert.Contains(t, errOut.String(), "✗ broken: gcc")
}

func TestReporter(t *testing.T) {
	out, _ := capture(t)
	r := Reporter{}

	r.Stage(2, 4, "Compiling C -> object file")
	r.Command("gcc -c hello.c -o hello.o")
	r.CommandDone("gcc -c hello.c -o hello.o", 0, nil)
	r.CommandDone("gcc -c hello.c -o hello.o", 1, nil)
	r.CommandDone("gcc", -1, errors.New("not found"))
	r.Note("Output file: %s", "hello")

	s := out.String()
	assert.Contains(t, s, "[2/4] Compiling C -> object file")
	assert.Contains(t, s, "$ gcc -c hello.c -o hello.o")
	assert.Contains(t, s, "✓ command succeeded")
	assert.Contains(t, s, "exit code 1")
	assert.Contains(t, s, "could not run command: not found")
	assert.Contains(t, s, "Output file: hello")
}

func TestPrintTable(t *testing.T) {
	out, _ := capture(t)

	require.NoError(t, PrintTable([]string{"Tool", "Status"}, [][]string{{"gcc", "ok"}}))
	assert.Contains(t, out.String(), "Tool")
	assert.Contains(t, out.String(), "gcc")
}

func TestPrintMarkdown(t *testing.T) {
	out, _ := capture(t)

	require.NoError(t, PrintMarkdown("# Mika\n\n`var x = 5;`\n"))
	assert.Contains(t, out.String(), "Mika")
	assert.Contains(t, out.String(), "var x = 5;")
}

func TestSpinnerInertWithoutTerminal(t *testing.T) {
	out, _ := capture(t)

	s := PrintSpinner("Building")
	s.Stop()
	s.Stop()
	assert.Empty(t, out.String())
}

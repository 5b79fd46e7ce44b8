package ui

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	commandColor = color.New(color.FgCyan, color.Bold)
	okColor      = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed, color.Bold)
)

// Reporter prints verbose build progress: one step line per stage, each
// command before it runs and its exit status afterwards.
type Reporter struct{}

func (Reporter) Stage(n, total int, title string) {
	fmt.Fprintln(Out)
	PrintStep(n, total, title)
}

func (Reporter) Command(line string) {
	commandColor.Fprint(Out, "   $ ")
	fmt.Fprintln(Out, line)
}

func (Reporter) CommandDone(line string, exitCode int, err error) {
	switch {
	case err != nil:
		failColor.Fprintf(Out, "   ✗ could not run command: %v\n", err)
	case exitCode != 0:
		failColor.Fprintf(Out, "   ✗ command failed (exit code %d)\n", exitCode)
	default:
		okColor.Fprintln(Out, "   ✓ command succeeded")
	}
}

func (Reporter) Note(format string, args ...any) {
	PrintDetail(format, args...)
}

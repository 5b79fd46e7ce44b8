// Package commands implements the mika2c and mikac command lines.
package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/mika-go/cli/internal/config"
	"github.com/satishbabariya/mika-go/cli/internal/ui"
	"github.com/satishbabariya/mika-go/internal/debug"
	"github.com/satishbabariya/mika-go/internal/failure"
	"github.com/satishbabariya/mika-go/toolchain"
)

// usageError is a command line mistake; the usage text is printed with it.
type usageError struct {
	cmd *cobra.Command
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// app carries what every command shares.
type app struct {
	configFile string
	logDebug   bool

	cfg    *config.Config
	fs     afero.Fs
	runner toolchain.Runner
}

func newApp() *app {
	return &app{
		fs:     config.AppFs,
		runner: toolchain.NewExecRunner(),
	}
}

// setup loads the configuration and the debug logger. It runs before every
// command.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(config.Options{File: a.configFile})
	if err != nil {
		return err
	}
	a.cfg = cfg

	debug.InitWithWriter(ui.Err, a.logDebug || cfg.Debug)
	if cfg.File != "" {
		debug.Debug("Loaded config", "file", cfg.File)
	}
	return nil
}

// configure applies the error handling shared by both root commands.
func configure(root *cobra.Command) *cobra.Command {
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{cmd: cmd, err: err}
	})
	return root
}

// exactlyOneInput requires the single positional input file.
func exactlyOneInput(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 1:
		return nil
	case 0:
		return &usageError{cmd: cmd, err: failure.Validationf("no input file given")}
	default:
		return &usageError{cmd: cmd, err: failure.Validationf("expected one input file, got %d: %s", len(args), strings.Join(args, " "))}
	}
}

// Run executes root with args and returns the process exit code: 0 on
// success or help, 1 on any error.
func Run(root *cobra.Command, args []string) int {
	root.SetArgs(args)
	root.SetOut(ui.Out)
	root.SetErr(ui.Err)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var uerr *usageError
	if errors.As(err, &uerr) {
		ui.PrintError("%v", uerr.err)
		fmt.Fprintln(ui.Err)
		fmt.Fprint(ui.Err, uerr.cmd.UsageString())
		return 1
	}

	if strings.HasPrefix(err.Error(), "unknown command") {
		ui.PrintError("%v", err)
		fmt.Fprint(ui.Err, root.UsageString())
		return 1
	}

	ui.PrintError("%v", err)
	if out := strings.TrimRight(failure.OutputOf(err), "\n"); out != "" {
		fmt.Fprintln(ui.Err, out)
	}
	return 1
}

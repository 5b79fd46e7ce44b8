package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/mika-go/build"
	"github.com/satishbabariya/mika-go/cli/internal/ui"
	"github.com/satishbabariya/mika-go/cli/internal/version"
	"github.com/satishbabariya/mika-go/history"
	"github.com/satishbabariya/mika-go/internal/debug"
)

// NewBuildCommand returns the mikac root command.
func NewBuildCommand() *cobra.Command {
	return newBuildCommand(newApp())
}

func newBuildCommand(a *app) *cobra.Command {
	opts := build.Options{}

	cmd := &cobra.Command{
		Use:   "mikac [flags] <input.mk>",
		Short: "Build a native executable from a Mika program",
		Long: `Build a native executable from a Mika program.

mikac translates the program to C, compiles it, compiles the Mika runtime
support library and links both into an executable named after the input.`,
		Example: `  mikac hello.mk               # build ./hello
  mikac -o greeter hello.mk    # build ./greeter
  mikac -c -k hello.mk         # stop after hello.o and keep hello.c
  mikac -v -g hello.mk         # verbose build with debug symbols`,
		Version:           version.Version,
		Args:              exactlyOneInput,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			run := opts
			run.Input = args[0]
			return a.runBuild(cmd.Context(), run)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Name the executable `file`")
	cmd.Flags().BoolVarP(&opts.CompileOnly, "compile-only", "c", false, "Compile only, do not link")
	cmd.Flags().BoolVarP(&opts.Debug, "debug-info", "g", false, "Include debug information")
	cmd.Flags().BoolVarP(&opts.KeepFiles, "keep", "k", false, "Keep intermediate .c and .o files")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show every stage and command")
	cmd.PersistentFlags().BoolVar(&a.logDebug, "log-debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Config `file` (default .mika.yaml)")
	cmd.SetVersionTemplate("Mika Language Compiler v{{.Version}}\n")

	cmd.AddCommand(
		newVersionCommand("mikac"),
		newInitCommand(a),
		newDoctorCommand(a),
		newSyntaxCommand(),
		newRuntimeCommand(a),
		newHistoryCommand(a),
	)

	return configure(cmd)
}

func (a *app) orchestrator() (*build.Orchestrator, error) {
	cfg := a.cfg
	return build.New(a.fs, a.runner, build.Config{
		CC:                cfg.Toolchain.CC,
		IncludeDirs:       []string{cfg.Runtime.IncludeDir()},
		RuntimeDir:        cfg.Runtime.Dir,
		TempDir:           cfg.Runtime.TempDir,
		SupportObject:     cfg.Runtime.Object,
		TranslatorCommand: cfg.Translator.Command,
	})
}

func (a *app) runBuild(ctx context.Context, opts build.Options) error {
	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	if opts.Verbose {
		orch.Reporter = ui.Reporter{}
		ui.PrintHeader("Mika Language Compiler", "v"+version.Version)
		ui.PrintDetail("Input: %s", opts.Input)
	}

	spinner := &ui.Spinner{}
	if !opts.Verbose {
		spinner = ui.PrintSpinner("Building " + opts.Input)
	}

	started := time.Now()
	result, err := orch.Build(ctx, opts)
	spinner.Stop()

	a.recordBuild(ctx, opts, result, err, started)
	if err != nil {
		return err
	}

	switch {
	case opts.CompileOnly:
		ui.PrintSuccess("%s -> %s", opts.Input, result.Artifacts.Object)
	case opts.Verbose:
		fmt.Fprintln(ui.Out)
		ui.PrintSuccess("Build finished")
		ui.PrintDetail("Executable: %s", result.Artifacts.Executable)
		ui.PrintDetail("Size: %d bytes", result.Size)
	default:
		ui.PrintSuccess("%s -> %s", opts.Input, result.Artifacts.Executable)
	}
	return nil
}

// recordBuild appends the build to the history database when enabled.
// History problems never fail the build.
func (a *app) recordBuild(ctx context.Context, opts build.Options, result *build.Result, buildErr error, started time.Time) {
	if !a.cfg.History.Enabled || result == nil {
		return
	}

	record := &history.Record{
		Input:     opts.Input,
		Output:    result.Artifacts.Executable,
		State:     result.State.String(),
		Success:   buildErr == nil,
		StartedAt: started,
		Duration:  time.Since(started),
		Size:      result.Size,
	}
	if opts.CompileOnly {
		record.Output = result.Artifacts.Object
	}
	if buildErr != nil {
		record.Error = buildErr.Error()
	}
	if data, err := afero.ReadFile(a.fs, opts.Input); err == nil {
		record.Checksum = history.CalculateChecksum(data)
	}

	store, err := history.Open(ctx, a.cfg.History.Driver, a.cfg.History.DSN)
	if err != nil {
		debug.Warn("Build history unavailable", "error", err)
		return
	}
	defer store.Close()

	if err := store.Record(ctx, record); err != nil {
		debug.Warn("Failed to record build", "error", err)
	}
}

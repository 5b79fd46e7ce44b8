package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/mika-go/cli/internal/ui"
	"github.com/satishbabariya/mika-go/cli/internal/version"
	"github.com/satishbabariya/mika-go/cli/internal/watch"
	"github.com/satishbabariya/mika-go/support"
	"github.com/satishbabariya/mika-go/translator"
)

type translateOptions struct {
	output  string
	keep    bool
	verbose bool
	watch   bool
}

// NewTranslateCommand returns the mika2c root command.
func NewTranslateCommand() *cobra.Command {
	return newTranslateCommand(newApp())
}

func newTranslateCommand(a *app) *cobra.Command {
	opts := &translateOptions{}

	cmd := &cobra.Command{
		Use:   "mika2c [flags] <input.mk>",
		Short: "Translate Mika source to C",
		Long: `Translate a Mika program into C, line by line.

The output defaults to the input path with a .c extension.`,
		Example: `  mika2c program.mk            # translate program.mk into program.c
  mika2c -o output.c prog.mk   # translate into output.c
  mika2c -v hello.mk           # translate with a report`,
		Version:           version.Version,
		Args:              exactlyOneInput,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTranslate(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the C source to `file`")
	cmd.Flags().BoolVarP(&opts.keep, "keep", "k", false, "Keep intermediate .c files (accepted for compatibility with mikac)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Report what was translated")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Translate again whenever the input changes")
	cmd.PersistentFlags().BoolVar(&a.logDebug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Config `file` (default .mika.yaml)")
	cmd.SetVersionTemplate(fmt.Sprintf("%s v{{.Version}}\n", translator.ToolName))

	return configure(cmd)
}

func (a *app) translator() *translator.Translator {
	header := filepath.Join(a.cfg.Runtime.Dir, support.HeaderName)
	return translator.New(a.fs, translator.NewRuleSet(translator.WithRuntimeHeader(header)))
}

func (a *app) runTranslate(ctx context.Context, input string, opts *translateOptions) error {
	unit, err := translator.NewUnit(input, opts.output)
	if err != nil {
		return err
	}
	tr := a.translator()

	translate := func() error {
		if opts.verbose {
			ui.PrintInfo("Translating Mika -> C")
			ui.PrintDetail("Input:  %s", unit.Input)
			ui.PrintDetail("Output: %s", unit.Output)
		}

		lines, err := tr.Translate(unit)
		if err != nil {
			return err
		}

		if opts.verbose {
			ui.PrintSuccess("Translation finished")
			ui.PrintDetail("Lines processed: %d", lines)
			ui.PrintDetail("Result: %s", unit.Output)
		}
		return nil
	}

	if err := translate(); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	return a.watchTranslate(ctx, unit, func() error {
		if err := translate(); err != nil {
			return err
		}
		if !opts.verbose {
			ui.PrintSuccess("%s -> %s", unit.Input, unit.Output)
		}
		return nil
	})
}

func (a *app) watchTranslate(ctx context.Context, unit translator.Unit, callback func() error) error {
	watcher, err := watch.NewWatcher(unit.Input, callback)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	watcher.OnError = func(err error) { ui.PrintError("%v", err) }
	defer watcher.Stop()

	watcher.Start()
	ui.PrintSuccess("Watching %s for changes... (Press Ctrl+C to stop)", unit.Input)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	ui.PrintInfo("Stopping watch mode...")
	return nil
}

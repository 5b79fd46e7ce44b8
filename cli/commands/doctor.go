package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/mika-go/cli/internal/ui"
	"github.com/satishbabariya/mika-go/support"
	"github.com/satishbabariya/mika-go/toolchain"
)

func newDoctorCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the C toolchain and the Mika runtime",
		Long: `Check that everything mikac needs is available.

This command will:
- Look up the C compiler (and an external translator, if configured) in PATH
- Check the compiler version against toolchain.min_version
- Report whether the runtime header and library are installed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDoctor(cmd.Context())
		},
	}
}

func (a *app) toolRequirements() []toolchain.ToolRequirement {
	reqs := []toolchain.ToolRequirement{{
		Name:    a.cfg.Toolchain.CC,
		Purpose: "C compiler and linker",
	}}
	if a.cfg.Translator.Command != "" {
		if cmd, err := toolchain.ParseCommand(a.cfg.Translator.Command); err == nil {
			reqs = append(reqs, toolchain.ToolRequirement{Name: cmd.Name, Purpose: "external translator"})
		}
	}
	return reqs
}

func (a *app) runDoctor(ctx context.Context) error {
	ui.PrintSection("Mika toolchain")

	var rows [][]string
	var problems []error

	statuses, err := toolchain.CheckTools(a.toolRequirements())
	if err != nil {
		problems = append(problems, err)
	}
	for _, status := range statuses {
		if status.Found == "" {
			rows = append(rows, []string{status.Requirement.Name, "missing", status.Requirement.Purpose})
			continue
		}
		rows = append(rows, []string{status.Requirement.Name, "ok", status.Path})
	}

	if len(statuses) > 0 && statuses[0].Found != "" {
		spinner := ui.PrintSpinner("Checking compiler version...")
		compiler := &toolchain.Compiler{CC: a.cfg.Toolchain.CC}
		v, err := toolchain.CheckVersion(ctx, a.runner, compiler, a.cfg.Toolchain.MinVersion)
		spinner.Stop()

		switch {
		case err != nil && v != nil:
			rows = append(rows, []string{"version", "too old", err.Error()})
			problems = append(problems, err)
		case err != nil:
			rows = append(rows, []string{"version", "unknown", err.Error()})
			problems = append(problems, err)
		default:
			rows = append(rows, []string{"version", "ok", fmt.Sprintf("%s >= %s", v, a.cfg.Toolchain.MinVersion)})
		}
	}

	resolver := support.NewResolver(a.fs, a.cfg.Runtime.Dir, a.cfg.Runtime.TempDir)
	header := filepath.Join(resolver.Dir, support.HeaderName)
	if ok, _ := afero.Exists(a.fs, header); ok {
		rows = append(rows, []string{support.HeaderName, "ok", header})
	} else {
		rows = append(rows, []string{support.HeaderName, "missing", "run: mikac runtime install"})
		problems = append(problems, fmt.Errorf("runtime header not found: %s", header))
	}
	if ok, _ := afero.Exists(a.fs, resolver.InstalledPath()); ok {
		rows = append(rows, []string{support.SourceName, "ok", resolver.InstalledPath()})
	} else {
		rows = append(rows, []string{support.SourceName, "fallback", "embedded copy is compiled per build"})
	}

	if err := ui.PrintTable([]string{"Check", "Status", "Detail"}, rows); err != nil {
		return err
	}

	if len(problems) > 0 {
		return fmt.Errorf("doctor found %d problem(s): %w", len(problems), errors.Join(problems...))
	}
	ui.PrintSuccess("Everything looks good")
	return nil
}

package commands

import (
	"fmt"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/mika-go/cli/internal/config"
	"github.com/satishbabariya/mika-go/cli/internal/ui"
)

const helloProgram = `#include <System>

// Entry point of the program.
function main() {
    var answer = 42;
    print("The answer is %d\n", answer);
    return 993;
}
`

const gitignoreContent = `# Build output
*.c
*.o

# Environment variables
.env
.env.local
`

// confirm asks a yes/no question; replaced in tests.
var confirm = func(message string) (bool, error) {
	ok := false
	err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &ok)
	return ok, err
}

func newInitCommand(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a new Mika project",
		Long: `Create a hello-world Mika project.

This command will:
- Create main.mk with a minimal program
- Write a .mika.yaml with the current toolchain settings
- Add a .gitignore for build output`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return a.runInit(dir, force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files without asking")
	return cmd
}

func (a *app) runInit(dir string, force bool) error {
	ui.PrintInfo("Initializing Mika project in %s", dir)

	if err := a.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	programPath := filepath.Join(dir, "main.mk")
	write, err := a.shouldWrite(programPath, force)
	if err != nil {
		return err
	}
	if write {
		if err := afero.WriteFile(a.fs, programPath, []byte(helloProgram), 0644); err != nil {
			return fmt.Errorf("failed to create program: %w", err)
		}
		ui.PrintSuccess("Created %s", programPath)
	} else {
		ui.PrintWarning("Keeping existing %s", programPath)
	}

	configPath := filepath.Join(dir, config.FileName+".yaml")
	if exists, _ := afero.Exists(a.fs, configPath); !exists || force {
		if err := config.SaveConfig(a.cfg, configPath); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		ui.PrintSuccess("Created %s", configPath)
	}

	gitignorePath := filepath.Join(dir, ".gitignore")
	if exists, _ := afero.Exists(a.fs, gitignorePath); !exists {
		if err := afero.WriteFile(a.fs, gitignorePath, []byte(gitignoreContent), 0644); err != nil {
			ui.PrintWarning("Failed to create .gitignore: %v", err)
		} else {
			ui.PrintSuccess("Created %s", gitignorePath)
		}
	}

	fmt.Fprintln(ui.Out)
	ui.PrintInfo("Next steps:")
	ui.PrintList([]string{
		"mikac doctor            check the C toolchain",
		"mikac runtime install   install the runtime header and library",
		"mikac -v " + programPath,
	})
	return nil
}

// shouldWrite reports whether path may be written. Existing files are only
// replaced with force or after confirmation on a terminal.
func (a *app) shouldWrite(path string, force bool) (bool, error) {
	exists, err := afero.Exists(a.fs, path)
	if err != nil {
		return false, err
	}
	if !exists || force {
		return true, nil
	}
	if !ui.Interactive() {
		return false, nil
	}
	ok, err := confirm(fmt.Sprintf("%s already exists. Overwrite?", path))
	if err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return ok, nil
}

package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-version"
)

// ToolRequirement describes an external tool the build depends on.
type ToolRequirement struct {
	// Name is the binary looked up in PATH.
	Name string
	// Alternatives satisfy the requirement when Name is missing.
	Alternatives []string
	// Optional tools are reported but never fail the check.
	Optional bool
	// Purpose is shown to the user, e.g. "C compiler and linker".
	Purpose string
}

// ToolStatus is the result of checking one requirement.
type ToolStatus struct {
	Requirement ToolRequirement
	// Found is the binary that satisfied the requirement, if any.
	Found string
	Path  string
}

// LookPath is exec.LookPath, replaceable in tests.
var LookPath = exec.LookPath

// CheckTools looks every requirement up in PATH. The returned error lists
// all missing required tools.
func CheckTools(requirements []ToolRequirement) ([]ToolStatus, error) {
	var statuses []ToolStatus
	var missing []string

	for _, req := range requirements {
		status := ToolStatus{Requirement: req}
		for _, name := range append([]string{req.Name}, req.Alternatives...) {
			if path, err := LookPath(name); err == nil {
				status.Found = name
				status.Path = path
				break
			}
		}
		statuses = append(statuses, status)

		if status.Found == "" && !req.Optional {
			if req.Purpose != "" {
				missing = append(missing, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
			} else {
				missing = append(missing, req.Name)
			}
		}
	}

	switch len(missing) {
	case 0:
		return statuses, nil
	case 1:
		return statuses, fmt.Errorf("%s not found in PATH", missing[0])
	default:
		return statuses, fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
	}
}

// CompilerVersion runs cc -dumpversion and parses the result.
func CompilerVersion(ctx context.Context, runner Runner, c *Compiler) (*version.Version, error) {
	cmd := c.Version()
	outcome, err := runner.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if !outcome.Success() {
		return nil, fmt.Errorf("%s exited with status %d", cmd, outcome.ExitCode)
	}

	raw := strings.TrimSpace(outcome.Output)
	v, err := version.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid compiler version %q: %w", raw, err)
	}
	return v, nil
}

// CheckVersion verifies the compiler is at least minimum. The detected
// version is returned even when it is too old.
func CheckVersion(ctx context.Context, runner Runner, c *Compiler, minimum string) (*version.Version, error) {
	min, err := version.NewVersion(minimum)
	if err != nil {
		return nil, fmt.Errorf("invalid minimum version format: %w", err)
	}

	current, err := CompilerVersion(ctx, runner, c)
	if err != nil {
		return nil, err
	}

	if current.LessThan(min) {
		return current, fmt.Errorf("%s %s is older than the required %s", c.cc(), current, min)
	}
	return current, nil
}

// Package build drives a Mika program through translation, compilation,
// runtime support resolution and linking.
//
// # Pipeline
//
//	Start -> Translated -> Compiled -> SupportResolved -> SupportCompiled -> Linked -> Done
//
// Any state can move to Aborted. Every stage blocks until its step
// completes; a failure removes the artifacts created so far (unless keep
// files is set) and ends the build.
//
// # Artifacts
//
//   - <stem>.c      translated source, removed unless KeepFiles
//   - <stem>.o      program object, removed unless KeepFiles
//   - mika_std_*.c  ephemeral runtime source, always removed after compiling
//   - mika_std.o    runtime object at a fixed path, always removed
//   - <stem>        executable, or Options.Output
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/satishbabariya/mika-go/internal/debug"
	"github.com/satishbabariya/mika-go/internal/failure"
	"github.com/satishbabariya/mika-go/support"
	"github.com/satishbabariya/mika-go/toolchain"
	"github.com/satishbabariya/mika-go/translator"
)

const objectExtension = ".o"

// Options are the per-invocation switches of a build.
type Options struct {
	// Input is the .mk source; it must exist.
	Input string
	// Output overrides the executable path (default: input stem).
	Output string
	// CompileOnly stops after the program object is produced.
	CompileOnly bool
	// Debug adds symbol tables to the compile and link.
	Debug bool
	// KeepFiles keeps the translated source and object file.
	KeepFiles bool
	// Verbose echoes every command and its outcome to the Reporter.
	Verbose bool
}

// Artifacts are the files a build creates.
type Artifacts struct {
	Translated    string
	Object        string
	Support       *support.Source
	SupportObject string
	Executable    string
}

// Result describes a finished build.
type Result struct {
	State     State
	Artifacts Artifacts
	// Lines is the number of source lines translated in-process; zero when
	// an external translator ran.
	Lines int
	// Size of the executable in bytes.
	Size int64
}

// Config wires an Orchestrator to its collaborators.
type Config struct {
	// CC is the compiler driver (gcc by default).
	CC string
	// IncludeDirs are added with -I when compiling the program.
	IncludeDirs []string
	// RuntimeDir is checked for an installed runtime.
	RuntimeDir string
	// TempDir receives the ephemeral runtime source.
	TempDir string
	// SupportObject is the fixed runtime object path.
	SupportObject string
	// TranslatorCommand runs an external translator instead of the
	// in-process one, e.g. "mika2c". The input path is appended.
	TranslatorCommand string
}

// Orchestrator runs builds.
type Orchestrator struct {
	Fs         afero.Fs
	Runner     toolchain.Runner
	Translator *translator.Translator
	Resolver   *support.Resolver
	Reporter   Reporter

	CC                string
	IncludeDirs       []string
	SupportObject     string
	TranslatorCommand *toolchain.Command
}

// New creates an orchestrator. runner executes the compiler, linker and,
// when configured, the external translator.
func New(fs afero.Fs, runner toolchain.Runner, cfg Config) (*Orchestrator, error) {
	runtimeDir := cfg.RuntimeDir
	if runtimeDir == "" {
		runtimeDir = support.DefaultDir
	}

	includeDirs := cfg.IncludeDirs
	if includeDirs == nil {
		includeDirs = []string{filepath.Dir(runtimeDir)}
	}

	supportObject := cfg.SupportObject
	if supportObject == "" {
		supportObject = support.DefaultObjectPath(cfg.TempDir)
	}

	rules := translator.NewRuleSet(translator.WithRuntimeHeader(filepath.Join(runtimeDir, support.HeaderName)))

	o := &Orchestrator{
		Fs:            fs,
		Runner:        runner,
		Translator:    translator.New(fs, rules),
		Resolver:      support.NewResolver(fs, runtimeDir, cfg.TempDir),
		Reporter:      NopReporter{},
		CC:            cfg.CC,
		IncludeDirs:   includeDirs,
		SupportObject: supportObject,
	}

	if cfg.TranslatorCommand != "" {
		cmd, err := toolchain.ParseCommand(cfg.TranslatorCommand)
		if err != nil {
			return nil, fmt.Errorf("translator command: %w", err)
		}
		o.TranslatorCommand = &cmd
	}

	return o, nil
}

// Validate checks opts before anything is created on disk.
func (o *Orchestrator) Validate(opts Options) error {
	if opts.Input == "" {
		return failure.Validationf("no input file given")
	}

	ok, err := afero.Exists(o.Fs, opts.Input)
	if err != nil {
		return failure.IO("stat", opts.Input, err)
	}
	if !ok {
		return failure.Validationf("file '%s' does not exist", opts.Input)
	}

	if err := translator.ValidateSource(opts.Input); err != nil {
		return err
	}

	if opts.Output != "" {
		dir := filepath.Dir(opts.Output)
		if ok, _ := afero.DirExists(o.Fs, dir); !ok {
			return failure.Validationf("output directory '%s' does not exist", dir)
		}
	}
	return nil
}

// Build runs the whole pipeline for opts.Input.
//
// On failure the returned Result is in StateAborted and the error wraps
// the failure kind from package failure.
func (o *Orchestrator) Build(ctx context.Context, opts Options) (*Result, error) {
	if err := o.Validate(opts); err != nil {
		return &Result{State: StateStart}, err
	}

	r := &run{o: o, opts: opts, result: &Result{State: StateStart}}
	stem := translator.Stem(opts.Input)
	r.result.Artifacts = Artifacts{
		Translated:    stem + translator.TargetExtension,
		Object:        stem + objectExtension,
		SupportObject: o.SupportObject,
		Executable:    opts.Output,
	}
	if r.result.Artifacts.Executable == "" {
		r.result.Artifacts.Executable = stem
	}

	debug.Debug("Starting build",
		"input", opts.Input,
		"compile_only", opts.CompileOnly,
		"keep_files", opts.KeepFiles,
		"debug_info", opts.Debug)

	err := r.execute(ctx)
	if err != nil {
		debug.Error("Build aborted", "input", opts.Input, "error", err)
		r.result.State = StateAborted
		return r.result, err
	}

	debug.Info("Build finished", "input", opts.Input, "state", r.result.State.String())
	return r.result, nil
}

// run holds the state of one build.
type run struct {
	o      *Orchestrator
	opts   Options
	result *Result
}

func (r *run) total() int {
	if r.opts.CompileOnly {
		return 2
	}
	return 4
}

func (r *run) execute(ctx context.Context) error {
	if err := r.translate(ctx); err != nil {
		return err
	}
	if err := r.compile(ctx); err != nil {
		return err
	}
	if r.opts.CompileOnly {
		r.finishCompileOnly()
		return nil
	}
	if err := r.compileSupport(ctx); err != nil {
		return err
	}
	if err := r.link(ctx); err != nil {
		return err
	}
	r.finish()
	return nil
}

func (r *run) advance(to State) error {
	if err := Transition(r.result.State, to); err != nil {
		return err
	}
	debug.Debug("Build state", "from", r.result.State.String(), "to", to.String())
	r.result.State = to
	return nil
}

func (r *run) translate(ctx context.Context) error {
	a := &r.result.Artifacts
	r.stage(1, "Translating Mika -> C")

	if cmd := r.o.TranslatorCommand; cmd != nil {
		external := toolchain.Command{Name: cmd.Name, Args: append([]string{}, cmd.Args...)}
		if r.opts.Verbose {
			external.Args = append(external.Args, "-v")
		}
		external.Args = append(external.Args, r.opts.Input)

		if err := r.exec(ctx, failure.StageTranslate, external); err != nil {
			r.removeUnlessKept(a.Translated)
			return err
		}
		if ok, _ := afero.Exists(r.o.Fs, a.Translated); !ok {
			return failure.StageFailed(failure.StageTranslate, external.String(), "",
				fmt.Errorf("translated file was not created: %s", a.Translated))
		}
	} else {
		unit := translator.Unit{Input: r.opts.Input, Output: a.Translated}
		lines, err := r.o.Translator.Translate(unit)
		if err != nil {
			r.removeUnlessKept(a.Translated)
			return fmt.Errorf("translation failed: %w", err)
		}
		r.result.Lines = lines
		r.note("Translated %d lines into %s", lines, a.Translated)
	}

	return r.advance(StateTranslated)
}

func (r *run) compile(ctx context.Context) error {
	a := &r.result.Artifacts
	r.stage(2, "Compiling C -> object file")

	cmd := r.compiler().CompileObject(a.Translated, a.Object)
	if err := r.exec(ctx, failure.StageCompile, cmd); err != nil {
		r.removeUnlessKept(a.Translated, a.Object)
		return err
	}
	if ok, _ := afero.Exists(r.o.Fs, a.Object); !ok {
		r.removeUnlessKept(a.Translated)
		return failure.StageFailed(failure.StageCompile, cmd.String(), "",
			fmt.Errorf("object file was not created: %s", a.Object))
	}

	return r.advance(StateCompiled)
}

func (r *run) finishCompileOnly() {
	a := r.result.Artifacts
	r.removeUnlessKept(a.Translated)
	r.note("Compilation finished (created %s)", a.Object)
}

func (r *run) compileSupport(ctx context.Context) error {
	a := &r.result.Artifacts
	r.stage(3, "Compiling runtime support library")

	src, err := r.o.Resolver.Resolve()
	if err != nil {
		r.removeUnlessKept(a.Translated, a.Object)
		return fmt.Errorf("failed to resolve runtime support: %w", err)
	}
	a.Support = src
	if src.Ephemeral {
		r.note("Generated temporary runtime: %s", src.Path)
	} else {
		r.note("Using installed runtime: %s", src.Path)
	}
	if err := r.advance(StateSupportResolved); err != nil {
		return err
	}

	cmd := r.compiler().CompileSupport(src.Path, a.SupportObject)
	err = r.exec(ctx, failure.StageSupportCompile, cmd)
	if rerr := src.Release(r.o.Fs); rerr != nil {
		debug.Warn("Failed to remove ephemeral runtime", "path", src.Path, "error", rerr)
	}
	if err != nil {
		r.removeUnlessKept(a.Translated, a.Object)
		r.remove(a.SupportObject)
		return err
	}

	return r.advance(StateSupportCompiled)
}

func (r *run) link(ctx context.Context) error {
	a := &r.result.Artifacts
	r.stage(4, "Linking executable")
	r.note("Output file: %s", a.Executable)

	cmd := r.compiler().Link(a.Executable, a.Object, a.SupportObject)
	err := r.exec(ctx, failure.StageLink, cmd)
	r.remove(a.SupportObject)
	if err != nil {
		r.removeUnlessKept(a.Translated, a.Object)
		return err
	}

	return r.advance(StateLinked)
}

func (r *run) finish() {
	a := r.result.Artifacts
	r.removeUnlessKept(a.Translated, a.Object)

	if info, err := r.o.Fs.Stat(a.Executable); err == nil {
		r.result.Size = info.Size()
	} else {
		debug.Warn("Cannot stat executable", "path", a.Executable, "error", err)
	}

	if err := r.advance(StateDone); err != nil {
		debug.Error("Unexpected state", "error", err)
	}
}

func (r *run) compiler() *toolchain.Compiler {
	return &toolchain.Compiler{
		CC:          r.o.CC,
		IncludeDirs: r.o.IncludeDirs,
		Debug:       r.opts.Debug,
	}
}

// exec runs one external step. Any non-zero status fails the stage.
func (r *run) exec(ctx context.Context, stage failure.Stage, cmd toolchain.Command) error {
	line := cmd.String()
	rep := r.reporter()
	if r.opts.Verbose {
		rep.Command(line)
	}

	outcome, err := r.o.Runner.Run(ctx, cmd)
	if r.opts.Verbose {
		rep.CommandDone(line, outcome.ExitCode, err)
	}

	if err != nil {
		return failure.StageFailed(stage, line, outcome.Output, err)
	}
	if !outcome.Success() {
		return failure.StageFailed(stage, line, outcome.Output, fmt.Errorf("exit status %d", outcome.ExitCode))
	}
	return nil
}

func (r *run) removeUnlessKept(paths ...string) {
	if r.opts.KeepFiles {
		return
	}
	r.remove(paths...)
}

func (r *run) remove(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		err := r.o.Fs.Remove(path)
		switch {
		case err == nil:
			debug.Debug("Removed artifact", "path", path)
		case errors.Is(err, os.ErrNotExist):
		default:
			debug.Warn("Failed to remove artifact", "path", path, "error", err)
		}
	}
}

func (r *run) reporter() Reporter {
	if r.o.Reporter == nil {
		return NopReporter{}
	}
	return r.o.Reporter
}

func (r *run) stage(n int, title string) {
	if r.opts.Verbose {
		r.reporter().Stage(n, r.total(), title)
	}
}

func (r *run) note(format string, args ...any) {
	if r.opts.Verbose {
		r.reporter().Note(format, args...)
	}
}

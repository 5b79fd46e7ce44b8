// Package translator rewrites Mika source into C one line at a time.
package translator

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/satishbabariya/mika-go/internal/debug"
	"github.com/satishbabariya/mika-go/internal/failure"
)

const (
	// ToolName appears in the provenance header of generated files.
	ToolName = "Mika Language Transpiler"
	// Version of the translator.
	Version = "1.1.0"

	// SourceExtension is the only accepted input extension.
	SourceExtension = ".mk"
	// TargetExtension is appended to the input stem for the translated file.
	TargetExtension = ".c"

	maxLineLength = 1 << 20
)

// Unit pairs one Mika source with the C file produced from it.
type Unit struct {
	Input  string
	Output string
}

// NewUnit validates input and derives the output path from its stem unless
// output is given.
func NewUnit(input, output string) (Unit, error) {
	if err := ValidateSource(input); err != nil {
		return Unit{}, err
	}
	if output == "" {
		output = Stem(input) + TargetExtension
	}
	return Unit{Input: input, Output: output}, nil
}

// ValidateSource checks that path carries the .mk extension.
func ValidateSource(path string) error {
	if filepath.Ext(path) != SourceExtension {
		return failure.Validationf("file must have %s extension, got: %s", SourceExtension, path)
	}
	return nil
}

// Stem returns path without its final extension.
func Stem(path string) string {
	return path[:len(path)-len(filepath.Ext(path))]
}

// Translator converts Mika files to C.
type Translator struct {
	Fs    afero.Fs
	Rules *RuleSet
	// Now stamps the provenance header.
	Now func() time.Time
}

// New creates a translator over fs using rules. A nil rule set means the
// standard one.
func New(fs afero.Fs, rules *RuleSet) *Translator {
	if rules == nil {
		rules = NewRuleSet()
	}
	return &Translator{
		Fs:    fs,
		Rules: rules,
		Now:   time.Now,
	}
}

// Translate reads unit.Input and writes the translated program to
// unit.Output. It returns the number of source lines processed.
func (t *Translator) Translate(unit Unit) (int, error) {
	debug.Debug("Translating", "input", unit.Input, "output", unit.Output)

	in, err := t.Fs.Open(unit.Input)
	if err != nil {
		return 0, failure.IO("open input", unit.Input, err)
	}
	defer in.Close()

	out, err := t.Fs.Create(unit.Output)
	if err != nil {
		return 0, failure.IO("create output", unit.Output, err)
	}

	lines, err := t.TranslateStream(in, out, unit.Input)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = failure.IO("close output", unit.Output, cerr)
	}
	if err != nil {
		debug.Error("Translation failed", "input", unit.Input, "line", lines, "error", err)
		return lines, err
	}

	debug.Debug("Translation finished", "input", unit.Input, "lines", lines)
	return lines, nil
}

// TranslateStream translates r into w. source is the name recorded in the
// provenance header.
func (t *Translator) TranslateStream(r io.Reader, w io.Writer, source string) (int, error) {
	bw := bufio.NewWriter(w)

	if err := t.writeHeader(bw, source); err != nil {
		return 0, failure.IO("write header", source, err)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	scanner.Split(scanLines)

	lines := 0
	for scanner.Scan() {
		lines++

		line := StripComment(scanner.Text())
		if IsBlank(line) {
			if err := bw.WriteByte('\n'); err != nil {
				return lines, failure.IO("write", source, err)
			}
			continue
		}

		rewritten, rule := t.Rules.Rewrite(line)
		if rule != "" {
			debug.Debug("Rewrote line", "line", lines, "rule", rule)
		}
		if _, err := bw.WriteString(rewritten); err != nil {
			return lines, failure.IO("write", source, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return lines, failure.IO("read", source, err)
	}

	if err := bw.Flush(); err != nil {
		return lines, failure.IO("flush", source, err)
	}
	return lines, nil
}

func (t *Translator) writeHeader(w io.Writer, source string) error {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}

	const rule = "// ============================================================================\n"
	_, err := fmt.Fprintf(w,
		rule+
			"// Code generated by %s v%s. DO NOT EDIT.\n"+
			"// Source file: %s\n"+
			"// Generated at: %s\n"+
			rule+"\n",
		ToolName, Version, source, now().Format(time.RFC3339))
	return err
}

// scanLines is a split function that keeps the trailing newline on each
// line so rewritten output preserves the source layout.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i+1], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

package translator

import "strings"

// Rule names reported by RuleSet.Rewrite.
const (
	RuleInclude  = "include"
	RulePrint    = "print"
	RuleReturn   = "return"
	RuleFunction = "function"
	RuleVariable = "variable"
	RuleInput    = "input"
	RulePower    = "power"
)

// Markers recognized by the default rule set, in priority order.
const (
	MarkerInclude  = "#include"
	MarkerPrint    = "print("
	MarkerReturn   = "return 993"
	MarkerFunction = "function "
	MarkerVariable = "var "
	MarkerInput    = "input()"
	MarkerPower    = "power("
)

// DefaultRuntimeHeader is where an installed runtime keeps mika_std.h.
const DefaultRuntimeHeader = "/usr/local/include/mika/mika_std.h"

// Rule associates a literal marker with a rewrite of the whole line.
// Apply is only called when the marker is a substring of the line.
type Rule struct {
	Name   string
	Marker string
	Apply  func(line string) string
}

// RuleSet is an ordered list of rules. The first rule whose marker occurs in
// a line is the only one applied to it.
//
// Matching is substring based: a marker inside a string literal or inside a
// longer identifier still fires, and a second construct on the same line is
// left as is.
type RuleSet struct {
	rules         []Rule
	runtimeHeader string
}

// Option configures a RuleSet.
type Option func(*RuleSet)

// WithRuntimeHeader sets the header path emitted for #include <System>.
func WithRuntimeHeader(path string) Option {
	return func(rs *RuleSet) {
		if path != "" {
			rs.runtimeHeader = path
		}
	}
}

// NewRuleSet creates the standard Mika rule set.
//
// Priority order:
//  1. #include       - library includes
//  2. print(        - formatted output
//  3. return 993    - sentinel success return
//  4. function      - function definitions
//  5. var           - variable declarations
//  6. input(), power( - runtime calls, kept verbatim
func NewRuleSet(opts ...Option) *RuleSet {
	rs := &RuleSet{runtimeHeader: DefaultRuntimeHeader}
	for _, opt := range opts {
		opt(rs)
	}

	rs.Register(Rule{Name: RuleInclude, Marker: MarkerInclude, Apply: rs.rewriteInclude})
	rs.Register(Rule{Name: RulePrint, Marker: MarkerPrint, Apply: replaceMarker(MarkerPrint, "printf(")})
	rs.Register(Rule{Name: RuleReturn, Marker: MarkerReturn, Apply: replaceMarker(MarkerReturn, "return 0")})
	rs.Register(Rule{Name: RuleFunction, Marker: MarkerFunction, Apply: replaceMarker(MarkerFunction, "int ")})
	rs.Register(Rule{Name: RuleVariable, Marker: MarkerVariable, Apply: replaceMarker(MarkerVariable, "int ")})
	rs.Register(Rule{Name: RuleInput, Marker: MarkerInput, Apply: verbatim})
	rs.Register(Rule{Name: RulePower, Marker: MarkerPower, Apply: verbatim})

	return rs
}

// Register appends a rule with the lowest priority so far.
func (rs *RuleSet) Register(rule Rule) {
	rs.rules = append(rs.rules, rule)
}

// Rules returns a copy of the registered rules in priority order.
func (rs *RuleSet) Rules() []Rule {
	return append([]Rule{}, rs.rules...)
}

// RuntimeHeader returns the header path used for #include <System>.
func (rs *RuleSet) RuntimeHeader() string {
	return rs.runtimeHeader
}

// Rewrite applies the first matching rule to line. It returns the rewritten
// text and the name of the rule that fired, or the line itself and "" when
// no marker occurs in it.
func (rs *RuleSet) Rewrite(line string) (string, string) {
	for _, rule := range rs.rules {
		if strings.Contains(line, rule.Marker) {
			return rule.Apply(line), rule.Name
		}
	}
	return line, ""
}

func (rs *RuleSet) rewriteInclude(line string) string {
	switch {
	case strings.Contains(line, "#include <System>"):
		var b strings.Builder
		b.WriteString("#include <stdio.h>\n")
		b.WriteString("#include <stdlib.h>\n")
		b.WriteString("#include <string.h>\n")
		b.WriteString("#include <stdbool.h>\n")
		b.WriteString("#include \"" + rs.runtimeHeader + "\"\n\n")
		return b.String()
	case strings.Contains(line, "#include <Math>"):
		return "#include <math.h>\n"
	case strings.Contains(line, "#include <Time>"):
		return "#include <time.h>\n"
	default:
		return line
	}
}

// replaceMarker substitutes the first occurrence of marker, keeping the text
// on both sides byte for byte.
func replaceMarker(marker, replacement string) func(string) string {
	return func(line string) string {
		i := strings.Index(line, marker)
		if i < 0 {
			return line
		}
		return line[:i] + replacement + line[i+len(marker):]
	}
}

func verbatim(line string) string {
	return line
}

// StripComment discards everything from the first "//" onward. A line that
// keeps some code before the comment gets its newline back.
func StripComment(line string) string {
	i := strings.Index(line, "//")
	if i < 0 {
		return line
	}
	if i == 0 {
		return ""
	}
	return line[:i] + "\n"
}

// IsBlank reports whether a stripped line is echoed as an empty line.
func IsBlank(line string) bool {
	return line == "" || line[0] == '\n'
}

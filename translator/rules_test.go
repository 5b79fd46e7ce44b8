package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteSingleRule(t *testing.T) {
	rs := NewRuleSet()

	tests := []struct {
		name     string
		line     string
		want     string
		wantRule string
	}{
		{"variable", "var x = 5\n", "int x = 5\n", RuleVariable},
		{"indented variable", "    var total = a + b;\n", "    int total = a + b;\n", RuleVariable},
		{"print", "print(\"hi\")\n", "printf(\"hi\")\n", RulePrint},
		{"print keeps surroundings", "  print(\"%d\\n\", x);  \n", "  printf(\"%d\\n\", x);  \n", RulePrint},
		{"function", "function add(a, b) {\n", "int add(a, b) {\n", RuleFunction},
		{"sentinel return", "return 993;\n", "return 0;\n", RuleReturn},
		{"sentinel return indented", "    return 993; \n", "    return 0; \n", RuleReturn},
		{"sentinel glued to digits", "return 9930;\n", "return 00;\n", RuleReturn},
		{"math include", "#include <Math>\n", "#include <math.h>\n", RuleInclude},
		{"time include", "#include <Time>\n", "#include <time.h>\n", RuleInclude},
		{"unknown include", "#include <Other>\n", "#include <Other>\n", RuleInclude},
		{"input", "x = input();\n", "x = input();\n", RuleInput},
		{"power", "y = power(2, 8);\n", "y = power(2, 8);\n", RulePower},
		{"no final newline", "var x = 1", "int x = 1", RuleVariable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule := rs.Rewrite(tt.line)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRule, rule)
		})
	}
}

func TestRewritePassThrough(t *testing.T) {
	rs := NewRuleSet()

	lines := []string{
		"}\n",
		"x = x + 1;\n",
		"return 1;\n",
		"return 0;\n",
		"if (a > b) {\n",
		"   \n",
		"\tprintf(\"already C\");\n",
		"variable = 3;\n",
	}

	for _, line := range lines {
		got, rule := rs.Rewrite(line)
		assert.Equal(t, line, got, "line %q", line)
		assert.Equal(t, "", rule, "line %q", line)
	}
}

func TestRewriteFirstMatchWins(t *testing.T) {
	rs := NewRuleSet()

	tests := []struct {
		name     string
		line     string
		want     string
		wantRule string
	}{
		{
			name:     "print before var",
			line:     "var x = print(\"a\");\n",
			want:     "var x = printf(\"a\");\n",
			wantRule: RulePrint,
		},
		{
			name:     "return before function",
			line:     "function main() { return 993; }\n",
			want:     "function main() { return 0; }\n",
			wantRule: RuleReturn,
		},
		{
			name:     "function before var",
			line:     "function f() { var y = 1; }\n",
			want:     "int f() { var y = 1; }\n",
			wantRule: RuleFunction,
		},
		{
			name:     "include before print",
			line:     "#include \"print(.h\"\n",
			want:     "#include \"print(.h\"\n",
			wantRule: RuleInclude,
		},
		{
			name:     "only first print rewritten",
			line:     "print(\"a\"); print(\"b\");\n",
			want:     "printf(\"a\"); print(\"b\");\n",
			wantRule: RulePrint,
		},
		{
			name:     "marker inside string literal",
			line:     "printf(\"var x\");\n",
			want:     "printf(\"int x\");\n",
			wantRule: RuleVariable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule := rs.Rewrite(tt.line)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRule, rule)
		})
	}
}

func TestSystemInclude(t *testing.T) {
	rs := NewRuleSet(WithRuntimeHeader("/opt/mika/mika_std.h"))

	got, rule := rs.Rewrite("#include <System>\n")
	assert.Equal(t, RuleInclude, rule)
	assert.Equal(t, "#include <stdio.h>\n"+
		"#include <stdlib.h>\n"+
		"#include <string.h>\n"+
		"#include <stdbool.h>\n"+
		"#include \"/opt/mika/mika_std.h\"\n\n", got)
}

func TestDefaultRuntimeHeader(t *testing.T) {
	assert.Equal(t, DefaultRuntimeHeader, NewRuleSet().RuntimeHeader())
	assert.Equal(t, DefaultRuntimeHeader, NewRuleSet(WithRuntimeHeader("")).RuntimeHeader())
}

func TestRulesOrder(t *testing.T) {
	var names []string
	for _, r := range NewRuleSet().Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		RuleInclude, RulePrint, RuleReturn, RuleFunction, RuleVariable, RuleInput, RulePower,
	}, names)
}

func TestStripComment(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"var x = 1; // counter\n", "var x = 1; \n"},
		{"// whole line\n", ""},
		{"print(\"a\") //tail", "print(\"a\") \n"},
		{"no comment\n", "no comment\n"},
		{"url = \"http://x\";\n", "url = \"http:\n"},
	}

	for _, tt := range tests {
		got := StripComment(tt.line)
		assert.Equal(t, tt.want, got, "line %q", tt.line)
		assert.Equal(t, got, StripComment(got), "strip must be idempotent for %q", tt.line)
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank("\n"))
	assert.False(t, IsBlank("  \n"))
	assert.False(t, IsBlank("x\n"))
}

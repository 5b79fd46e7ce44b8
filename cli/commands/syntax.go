package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/mika-go/cli/internal/ui"
	"github.com/satishbabariya/mika-go/translator"
)

var ruleExamples = map[string][2]string{
	translator.RuleInclude:  {"#include <System>", `#include "…/mika_std.h"`},
	translator.RulePrint:    {`print("%d\n", x);`, `printf("%d\n", x);`},
	translator.RuleReturn:   {"return 993;", "return 0;"},
	translator.RuleFunction: {"function add(a, b) {", "int add(a, b) {"},
	translator.RuleVariable: {"var x = 5;", "int x = 5;"},
	translator.RuleInput:    {"n = input();", "n = input();"},
	translator.RulePower:    {"x = power(2, 8);", "x = power(2, 8);"},
}

// syntaxReference renders the rewrite rules as markdown, in the order they
// are tried.
func syntaxReference(rules []translator.Rule) string {
	var b strings.Builder
	b.WriteString("# Mika syntax\n\n")
	b.WriteString("Every line is rewritten by the first rule whose marker it contains. ")
	b.WriteString("Text after `//` is dropped; lines without a marker are copied unchanged.\n\n")
	b.WriteString("| # | Rule | Marker | Mika | C |\n")
	b.WriteString("|---|------|--------|------|---|\n")

	for i, rule := range rules {
		ex := ruleExamples[rule.Name]
		fmt.Fprintf(&b, "| %d | %s | `%s` | `%s` | `%s` |\n",
			i+1, rule.Name, strings.TrimSpace(rule.Marker), ex[0], ex[1])
	}

	b.WriteString("\n`#include <Math>` and `#include <Time>` map to `math.h` and `time.h`.\n")
	return b.String()
}

func newSyntaxCommand() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "syntax",
		Short: "Show the Mika syntax reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := syntaxReference(translator.NewRuleSet().Rules())
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), doc)
				return nil
			}
			return ui.PrintMarkdown(doc)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print plain markdown")
	return cmd
}

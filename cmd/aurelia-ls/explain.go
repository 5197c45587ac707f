package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/spf13/cobra"
)

// explainTemplate renders a diagnostic code's long-form description.
// Using text/template + sprig here (rather than a plain fmt.Sprintf
// table) provides sprig's helpers such as `trim` and gives future
// entries room for conditionals/formatting without changing the
// renderer.
const explainTemplate = `{{.Code}} — {{.Title}}
{{.Body | trim}}
`

var explainEntries = map[string]struct {
	Title string
	Body  string
}{
	"aurelia/unknown-element": {
		"Unknown custom element",
		"No resource definition resolved for this tag in the element's scope. Check spelling, that the element is imported or registered, and that discovery actually saw its declaring file.",
	},
	"aurelia/unknown-attribute": {
		"Unknown custom attribute",
		"No resource definition resolved for this attribute name in the element's scope.",
	},
	"aurelia/unknown-controller": {
		"Unknown template controller",
		"The `*.for`/`*.if`/... marker attribute did not resolve to a registered template controller.",
	},
	"aurelia/unknown-bindable": {
		"Unknown bindable property",
		"The attribute name did not match any bindable declared by the resolved element or attribute.",
	},
	"aurelia/unknown-command": {
		"Unknown binding command",
		"The `.command` suffix on this attribute is not one of the registered binding commands.",
	},
	"aurelia/unknown-converter": {
		"Unknown value converter",
		"The `| name` pipe did not resolve to a registered value converter.",
	},
	"aurelia/unknown-behavior": {
		"Unknown binding behavior",
		"The `& name` suffix did not resolve to a registered binding behavior.",
	},
	"aurelia/expr-parse-error": {
		"Expression parse error",
		"The host expression parser could not parse this binding expression; the binding is still emitted with its expression marked unparsable, and later checks skip that expression.",
	},
	"aurelia/expr-type-mismatch": {
		"Expression type mismatch",
		"The host type checker rejected this expression against the view-model's inferred type.",
	},
	"aurelia/project/definition-convergence": {
		"Definition convergence conflict",
		"Two or more discovery candidates disagreed about a field on the same resource; the higher-precedence candidate won, the rest are recorded as reasons.",
	},
}

func newExplainCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [code]",
		Short: "Print the long-form description of a diagnostic code, or list all codes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				codes := make([]string, 0, len(explainEntries))
				for code := range explainEntries {
					codes = append(codes, code)
				}
				sort.Strings(codes)
				for _, code := range codes {
					fmt.Fprintln(out, code)
				}
				return nil
			}
			return explainCode(out, args[0])
		},
	}
	return cmd
}

func explainCode(out io.Writer, code string) error {
	entry, ok := explainEntries[code]
	if !ok {
		return fmt.Errorf("no explanation registered for %q", code)
	}
	tpl, err := template.New("explain").Funcs(sprig.TxtFuncMap()).Parse(explainTemplate)
	if err != nil {
		return err
	}
	var sb strings.Builder
	if err := tpl.Execute(&sb, struct{ Code, Title, Body string }{code, entry.Title, entry.Body}); err != nil {
		return err
	}
	fmt.Fprint(out, sb.String())
	return nil
}

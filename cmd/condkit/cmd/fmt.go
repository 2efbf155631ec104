package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/QuickFlo/condkit/condition"
	"github.com/spf13/cobra"
)

var (
	fmtTemplate bool
	fmtCompact  bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [file]",
	Short: "Normalize a JSONLogic document through the condition engine",
	Long: `Reads a JSONLogic document from a file (or stdin), parses it into a
condition tree, and re-serializes it in canonical form: top-level connective
wrapping, numeric coercion of right-hand literals, fragments outside the
editor grammar preserved verbatim.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFmt,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Render a JSONLogic document as editor rows",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(inspectCmd)

	for _, c := range []*cobra.Command{fmtCmd, inspectCmd} {
		c.Flags().BoolVar(&fmtTemplate, "template", false, "use {{path}} template syntax")
	}
	fmtCmd.Flags().BoolVar(&fmtCompact, "compact", false, "emit compact output regardless of config")
}

// readLogic reads and decodes the input document from the argument file or
// stdin.
func readLogic(args []string) (any, error) {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("input is not valid JSON: %w", err)
	}
	return value, nil
}

// engineOptions resolves the conversion options from config and flags.
func engineOptions(cmd *cobra.Command) (condition.Options, bool, error) {
	cfg, err := loadConfig()
	if err != nil {
		return condition.Options{}, false, err
	}

	opts := condition.Options{UseTemplateSyntax: cfg.TemplateSyntax}
	if cmd.Flags().Changed("template") {
		opts.UseTemplateSyntax = fmtTemplate
	}

	pretty := cfg.Pretty
	if fmtCompact {
		pretty = false
	}
	return opts, pretty, nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	opts, pretty, err := engineOptions(cmd)
	if err != nil {
		return err
	}

	value, err := readLogic(args)
	if err != nil {
		return err
	}

	canonical := condition.ToJSONLogic(condition.FromJSONLogic(value, opts), opts)
	return writeJSON(os.Stdout, canonical, pretty)
}

func runInspect(cmd *cobra.Command, args []string) error {
	opts, _, err := engineOptions(cmd)
	if err != nil {
		return err
	}

	value, err := readLogic(args)
	if err != nil {
		return err
	}

	root := condition.FromJSONLogic(value, opts)
	fmt.Print(renderRoot(root))
	return nil
}

// writeJSON encodes with HTML escaping disabled so operator keys like ">"
// stay verbatim.
func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// renderRoot renders a condition tree as indented editor rows.
func renderRoot(root condition.ConditionRoot) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(string(root.Logic)) + "\n")
	renderItems(&b, root.Conditions, 1)
	return b.String()
}

func renderItems(b *strings.Builder, items []condition.ConditionItem, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, item := range items {
		switch v := item.(type) {
		case condition.SimpleCondition:
			b.WriteString(indent + renderRow(v) + "\n")
		case condition.ConditionGroup:
			b.WriteString(indent + strings.ToUpper(string(v.Logic)) + "\n")
			renderItems(b, v.Conditions, depth+1)
		}
	}
}

func renderRow(c condition.SimpleCondition) string {
	if c.HasUnparsed || c.Unparsed != nil {
		encoded, err := json.Marshal(c.Unparsed)
		if err != nil {
			return "(unsupported expression)"
		}
		return "(unsupported: " + string(encoded) + ")"
	}

	info, ok := condition.GetOperatorInfo(c.Operator)
	if !ok {
		info, _ = condition.GetOperatorInfo(condition.OpEq)
	}
	if !info.RightRequired {
		return c.Left + " " + info.Label
	}
	return c.Left + " " + string(info.Value) + " " + strconv.Quote(c.Right)
}

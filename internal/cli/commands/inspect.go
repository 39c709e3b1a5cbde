package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect <template>",
		Short: "List the placeholders of a template",
		Long: `List every ${...} placeholder of a DOCX template, block markers included,
with the part and position it was found at. The body comes first, then
headers and footers.`,
		Example: `  docfill inspect invoice.docx
  docfill inspect invoice.docx --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table|markdown|csv)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "markdown", "csv"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runInspect(cmd *cobra.Command, path, format string) error {
	engine := EngineFromContext(cmd.Context())
	tmpl, err := engine.PrepareFile(path)
	if err != nil {
		return fmt.Errorf("failed to prepare template: %w", err)
	}

	placeholders := tmpl.Placeholders()
	if len(placeholders) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "(no placeholders)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Part", "Location", "Placeholder"})
	for i, p := range placeholders {
		t.AppendRow(table.Row{i + 1, p.Part, p.Location, "${" + p.Body + "}"})
	}

	switch strings.ToLower(format) {
	case "table", "":
		t.Render()
	case "md", "markdown":
		t.RenderMarkdown()
	case "csv":
		t.RenderCSV()
	default:
		return fmt.Errorf("unknown format %q (want table, markdown or csv)", format)
	}
	return nil
}

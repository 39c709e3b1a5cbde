package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-docfill/internal/datasource"
	"github.com/benjaminschreck/go-docfill/pkg/docfill"
)

// RenderOptions holds the render command's flags.
type RenderOptions struct {
	Template   string
	DataFile   string
	DataFormat string
	Output     string
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Fill a template with data",
		Long: `Fill a DOCX template with a data context read from a JSON, YAML or XLSX file
and write the filled document.

Use "-" as the data file to read from stdin (see --data-format) and "-" as
the output to write to stdout.`,
		Example: `  # Fill a template from JSON
  docfill render -t invoice.docx -d invoice.json -o out.docx

  # Read YAML from stdin
  cat data.yaml | docfill render -t letter.docx -d - --data-format yaml -o letter.docx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Template, "template", "t", "", "template DOCX file")
	cmd.Flags().StringVarP(&opts.DataFile, "data", "d", "", "data file (.json, .yaml, .yml, .xlsx) or - for stdin")
	cmd.Flags().StringVar(&opts.DataFormat, "data-format", "json", "format of data read from stdin")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output DOCX file or - for stdout")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions) error {
	engine := EngineFromContext(cmd.Context())

	data, err := loadData(cmd.InOrStdin(), opts.DataFile, opts.DataFormat)
	if err != nil {
		return err
	}

	tmpl, err := engine.PrepareFile(opts.Template)
	if err != nil {
		return fmt.Errorf("failed to prepare template: %w", err)
	}

	if opts.Output == "-" {
		return tmpl.RenderTo(cmd.OutOrStdout(), data)
	}

	if err := renderToFile(tmpl, data, opts.Output); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", opts.Output)
	return nil
}

// loadData reads the data context. An empty path gives an empty context.
func loadData(stdin io.Reader, path, format string) (docfill.Data, error) {
	switch path {
	case "":
		return docfill.Data{}, nil
	case "-":
		f, err := datasource.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		return datasource.Decode(stdin, f)
	}
	return datasource.Load(path)
}

// renderToFile writes the filled document to path, removing the file if
// rendering fails.
func renderToFile(tmpl *docfill.PreparedTemplate, data docfill.Data, path string) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return docfill.NewDocumentError("create", path, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = docfill.NewDocumentError("write", path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return tmpl.RenderTo(out, data)
}

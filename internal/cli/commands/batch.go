package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/benjaminschreck/go-docfill/internal/datasource"
	"github.com/benjaminschreck/go-docfill/pkg/docfill"
)

// BatchOptions holds the batch command's flags.
type BatchOptions struct {
	Template string
	OutDir   string
	Jobs     int
	FailFast bool
}

// batchResult is the outcome for one data file.
type batchResult struct {
	DataFile string
	Output   string
	Err      error
}

// NewBatchCommand creates the batch command.
func NewBatchCommand() *cobra.Command {
	opts := &BatchOptions{}

	cmd := &cobra.Command{
		Use:   "batch [data files...]",
		Short: "Fill one template once per data file",
		Long: `Fill a DOCX template once for every data file given. The template is parsed
once; documents are rendered concurrently and written to --out-dir, named
after their data file.`,
		Example: `  docfill batch -t letter.docx --out-dir letters customers/*.json`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Template, "template", "t", "", "template DOCX file")
	cmd.Flags().StringVar(&opts.OutDir, "out-dir", ".", "directory for the filled documents")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.NumCPU(), "number of documents rendered at once")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "stop at the first failed document")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

func runBatch(cmd *cobra.Command, opts *BatchOptions, dataFiles []string) error {
	if opts.Jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1, got %d", opts.Jobs)
	}

	engine := EngineFromContext(cmd.Context())
	tmpl, err := engine.PrepareFile(opts.Template)
	if err != nil {
		return fmt.Errorf("failed to prepare template: %w", err)
	}

	if err := os.MkdirAll(opts.OutDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outputs, err := outputPaths(opts.OutDir, dataFiles)
	if err != nil {
		return err
	}

	results := make([]batchResult, len(dataFiles))
	var (
		mu       sync.Mutex
		failures = docfill.NewMultiError()
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(opts.Jobs)
	for i, dataFile := range dataFiles {
		results[i] = batchResult{DataFile: dataFile, Output: outputs[i]}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			err := renderOne(tmpl, dataFile, outputs[i])
			results[i].Err = err
			if err == nil {
				return nil
			}

			mu.Lock()
			failures.Add(fmt.Errorf("%s: %w", dataFile, err))
			mu.Unlock()
			if opts.FailFast {
				return err
			}
			return nil
		})
	}
	_ = g.Wait()

	printBatchResults(cmd, results)
	return failures.Err()
}

func renderOne(tmpl *docfill.PreparedTemplate, dataFile, output string) error {
	data, err := datasource.Load(dataFile)
	if err != nil {
		return err
	}
	return renderToFile(tmpl, data, output)
}

// outputPaths names each output after its data file. Two data files with the
// same base name would overwrite each other, so that is an error.
func outputPaths(outDir string, dataFiles []string) ([]string, error) {
	paths := make([]string, len(dataFiles))
	seen := make(map[string]string, len(dataFiles))
	for i, dataFile := range dataFiles {
		base := strings.TrimSuffix(filepath.Base(dataFile), filepath.Ext(dataFile))
		path := filepath.Join(outDir, base+".docx")
		if other, ok := seen[path]; ok {
			return nil, fmt.Errorf("data files %s and %s would both write %s", other, dataFile, path)
		}
		seen[path] = dataFile
		paths[i] = path
	}
	return paths, nil
}

func printBatchResults(cmd *cobra.Command, results []batchResult) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Data", "Output", "Status"})

	failed := 0
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "failed: " + r.Err.Error()
			failed++
		}
		t.AppendRow(table.Row{r.DataFile, r.Output, status})
	}
	t.AppendFooter(table.Row{"", "Total", fmt.Sprintf("%d ok, %d failed", len(results)-failed, failed)})
	t.Render()
}

// Package cli provides the command-line interface for docfill.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-docfill/internal/cli/commands"
	"github.com/benjaminschreck/go-docfill/internal/cli/config"
	"github.com/benjaminschreck/go-docfill/pkg/docfill"
)

// Version information (set at build time).
var Version = "0.1.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "docfill",
		Short: "docfill - fill DOCX templates from data",
		Long: `docfill fills Word (DOCX) templates from JSON, YAML or XLSX data.

Templates use ${...} placeholders: ${customer.name}, ${total:#,##0.00},
${if:paid}...${/if}, ${foreach:items}...${/foreach}, ${math:qty * price}
and ${list:items} to repeat a table row per item.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			result, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			engine, err := setup(cmd, result.Config)
			if err != nil {
				return err
			}
			cmd.SetContext(commands.WithEngine(cmd.Context(), engine))

			if result.File != "" {
				docfill.GetLogger().WithField("file", result.File).Debug("using config file")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./docfill.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace|debug|info|warn|error|off)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text|json)")
	rootCmd.PersistentFlags().String("locale", "", "locale for grouped number formats, e.g. de-DE")
	rootCmd.PersistentFlags().Int("cache-size", 0, "number of prepared templates kept in memory")
	rootCmd.PersistentFlags().Bool("fix-smart-quotes", true, "treat curly quotes in placeholders as straight quotes")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"trace", "debug", "info", "warn", "error", "off"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(commands.NewBatchCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())

	return rootCmd
}

// setup installs the configuration and a logger writing to the command's
// stderr, and builds the engine the subcommands use.
func setup(cmd *cobra.Command, cfg *docfill.Config) (*docfill.Engine, error) {
	logger := docfill.NewLoggerWithFormat(cmd.ErrOrStderr(), docfill.ParseLogLevel(cfg.LogLevel), docfill.ParseLogFormat(cfg.LogFormat))
	docfill.SetLogger(logger)

	if err := docfill.SetGlobalConfig(cfg); err != nil {
		return nil, err
	}
	return docfill.NewWithConfig(cfg, docfill.WithLogger(logger))
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

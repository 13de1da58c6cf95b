// Package cli implements the docedit command line.
package cli

import (
	"fmt"

	"github.com/dgallion1/docedit/internal/config"
	"github.com/dgallion1/docedit/internal/pipeline"
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "docedit",
	Short: "Convert and inspect rich-text documents",
	Long: `docedit converts documents between DOCX, Markdown, HTML, text, CSV and PDF
through one rich-text document model.

Configuration is read from DOCEDIT_CONFIG (YAML) and environment variables,
the same as the server.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "docedit %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newConverter builds a converter from the loaded configuration.
func newConverter() (*pipeline.Converter, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.ImportOptions()
	if err != nil {
		return nil, err
	}
	return &pipeline.Converter{
		Import:       opts,
		ExportPrefix: cfg.ExportPrefix,
		DefaultName:  cfg.DefaultExportName,
	}, nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/docedit/internal/docmodel"
	"github.com/dgallion1/docedit/internal/walker"
	"github.com/spf13/cobra"
)

var modelStats bool

var modelCmd = &cobra.Command{
	Use:   "model <file>",
	Short: "Print the document model of a file as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runModel,
}

func init() {
	modelCmd.Flags().BoolVar(&modelStats, "stats", false, "include walk statistics")
	rootCmd.AddCommand(modelCmd)
}

func runModel(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	conv, err := newConverter()
	if err != nil {
		return err
	}
	imp, err := conv.Decode(data, filepath.Base(path))
	if err != nil {
		return err
	}
	res := walker.Walk(imp.Root)

	out := struct {
		Title    string            `json:"title"`
		Document docmodel.Document `json:"document"`
		Stats    *walker.Stats     `json:"stats,omitempty"`
	}{Title: imp.Title, Document: res.Document}
	if modelStats {
		out.Stats = &res.Stats
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

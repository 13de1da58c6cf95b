package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/dgallion1/docedit/internal/export"
	"github.com/dgallion1/docedit/internal/parser"
	"github.com/dgallion1/docedit/internal/pipeline"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	convertTo       string
	convertOutDir   string
	convertJobs     int
	convertPrefix   string
	convertFailFast bool
	convertQuiet    bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>...",
	Short: "Convert documents to another format",
	Long: `Convert one or more documents through the document model.

Each output is written to the output directory as <prefix><name>.<ext>.

Examples:
  docedit convert report.docx --to md
  docedit convert notes/*.md --to docx -o out -j 8
  docedit convert page.html --to pdf --prefix ""`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertTo, "to", "t", "docx", "output format ("+strings.Join(export.Formats, ", ")+")")
	convertCmd.Flags().StringVarP(&convertOutDir, "output", "o", ".", "output directory")
	convertCmd.Flags().IntVarP(&convertJobs, "jobs", "j", runtime.NumCPU(), "files converted in parallel")
	convertCmd.Flags().StringVar(&convertPrefix, "prefix", "", "output name prefix (default from config, \"edited-\")")
	convertCmd.Flags().BoolVar(&convertFailFast, "fail-fast", false, "stop at the first failed file")
	convertCmd.Flags().BoolVarP(&convertQuiet, "quiet", "q", false, "only report failures")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if _, err := export.ForFormat(convertTo); err != nil {
		return err
	}
	for _, path := range args {
		if !parser.IsSupportedExtension(path) {
			return fmt.Errorf("unsupported file type: %s", path)
		}
	}
	conv, err := newConverter()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("prefix") {
		conv.ExportPrefix = convertPrefix
	}
	if err := checkCollisions(conv, args); err != nil {
		return err
	}
	if err := os.MkdirAll(convertOutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	if convertJobs > 0 {
		g.SetLimit(convertJobs)
	}

	var (
		mu     sync.Mutex
		failed []string
	)
	for _, path := range args {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return nil
			}
			out, err := convertFile(conv, path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, path)
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", path, pipeline.UserMessage(err))
				if convertFailFast {
					return err
				}
				return nil
			}
			if !convertQuiet {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", path, out)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("convert %d of %d files failed: %w", len(failed), len(args), err)
	}
	if len(failed) > 0 {
		return fmt.Errorf("convert %d of %d files failed", len(failed), len(args))
	}
	return nil
}

// checkCollisions rejects inputs that would write the same output file, such as a/report.md
// and b/report.md.
func checkCollisions(conv *pipeline.Converter, paths []string) error {
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		name, err := conv.OutputName(filepath.Base(path), convertTo)
		if err != nil {
			return err
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%s and %s both write %s", prev, path, filepath.Join(convertOutDir, name))
		}
		seen[name] = path
	}
	return nil
}

func convertFile(conv *pipeline.Converter, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	out, err := conv.Convert(data, filepath.Base(path), convertTo)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(convertOutDir, out.Filename)
	if err := os.WriteFile(dest, out.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}

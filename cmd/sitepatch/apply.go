package main

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"ninepros_server/internal/deploy"
	"ninepros_server/internal/patch"
	"ninepros_server/internal/types"
)

// Flag variables.
var (
	flagPages  string
	flagStream string
	flagOut    string
	flagJSON   bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a model response to a directory of pages",
	Long: `Apply loads every .html file under --pages (index.html is the main page),
applies the response in --stream ("-" reads stdin) and writes the result.

Examples:
  sitepatch apply --pages ./site --stream response.txt
  sitepatch apply --pages ./site --stream - --out ./site-v2 --json`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVar(&flagPages, "pages", "", "Directory holding the current pages (required)")
	applyCmd.Flags().StringVar(&flagStream, "stream", "", "File with the model response, or - for stdin (required)")
	applyCmd.Flags().StringVar(&flagOut, "out", "", "Output directory (default: overwrite --pages)")
	applyCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the result as JSON instead of a summary")
	_ = applyCmd.MarkFlagRequired("pages")
	_ = applyCmd.MarkFlagRequired("stream")
}

func runApply(cmd *cobra.Command, _ []string) error {
	pages, err := loadPages(flagPages)
	if err != nil {
		return err
	}

	var raw []byte
	if flagStream == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(flagStream)
	}
	if err != nil {
		return fmt.Errorf("reading stream: %w", err)
	}

	result := patch.Apply(pages, string(raw))

	out := flagOut
	if out == "" {
		out = flagPages
	}
	if err := os.MkdirAll(out, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := deploy.WritePages(out, result.Pages); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Fprintf(w, "%d pages in, %d pages out -> %s\n", len(pages), len(result.Pages), out)
	for _, r := range result.UpdatedLines {
		fmt.Fprintf(w, "  updated lines %d-%d\n", r[0], r[1])
	}
	return nil
}

// loadPages reads every .html file under dir. index.html maps to "/" and
// other files to "/<relative path>".
func loadPages(dir string) ([]types.Page, error) {
	var pages []types.Page
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".html") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		path := "/" + filepath.ToSlash(rel)
		if path == "/index.html" {
			path = "/"
		}
		pages = append(pages, types.Page{Path: path, HTML: string(content)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading pages from %s: %w", dir, err)
	}

	// Main page first so the legacy single-page format targets it.
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Path == "/" || pages[j].Path == "/" {
			return pages[i].Path == "/"
		}
		return pages[i].Path < pages[j].Path
	})
	return pages, nil
}

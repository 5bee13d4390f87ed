package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dgallion1/tenderdoc/internal/batch"
	"github.com/dgallion1/tenderdoc/internal/catalog"
	"github.com/dgallion1/tenderdoc/internal/doctree"
	"github.com/dgallion1/tenderdoc/internal/extractor"
	"github.com/dgallion1/tenderdoc/internal/sections"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tenderdoc",
		Short: "Split Thai e-bidding tender documents into their sections",
		Long: `tenderdoc locates the thirteen standard sections of a Thai
e-bidding tender document and prints them as JSON or as a summary.

Supported inputs: .txt .md .html .pdf .docx .xlsx`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(catalogCmd())
	return rootCmd
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a tender document",
		Long: `Parse a tender document and print its sections.

Use "-" to read plain text from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			only, _ := cmd.Flags().GetStringSlice("sections")
			ceiling, _ := cmd.Flags().GetInt("indent-ceiling")
			fallback, _ := cmd.Flags().GetBool("pdftotext")

			if format != "json" && format != "summary" {
				return fmt.Errorf("unknown format %q (want json or summary)", format)
			}
			for _, id := range only {
				if !catalog.Contains(id) {
					return fmt.Errorf("unknown section %q", id)
				}
			}

			data, name, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			text, err := extractor.ExtractFile(bytes.NewReader(data), name, extractor.Options{
				PdftotextFallback: fallback,
			})
			if err != nil {
				return fmt.Errorf("extract %s: %w", name, err)
			}

			doc := sections.Parser{IndentCeiling: ceiling}.Parse(text)
			if len(only) > 0 {
				narrow(doc, only)
			}

			out := cmd.OutOrStdout()
			if format == "summary" {
				writeSummary(out, name, doc)
				return nil
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(doc)
		},
	}

	cmd.Flags().StringP("format", "f", "json", "Output format (json, summary)")
	cmd.Flags().StringSlice("sections", nil, "Only print these section numbers")
	cmd.Flags().Int("indent-ceiling", sections.DefaultIndentCeiling, "Lines indented deeper than this are never headers")
	cmd.Flags().Bool("pdftotext", true, "Fall back to pdftotext when the PDF reader finds no text")
	return cmd
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <file>...",
		Short: "Parse several tender documents concurrently",
		Long: `Parse several tender documents and print one JSON result per file.

Files with identical content are parsed once; later copies are reported
as duplicates.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, _ := cmd.Flags().GetInt("workers")
			ceiling, _ := cmd.Flags().GetInt("indent-ceiling")
			fallback, _ := cmd.Flags().GetBool("pdftotext")
			verbose, _ := cmd.Flags().GetBool("verbose")

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelInfo
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			jobs := make([]*batch.Job, 0, len(args))
			for _, path := range args {
				jobs = append(jobs, batch.NewJob(path, filepath.Base(path)))
			}
			w := batch.NewWorker(
				sections.Parser{IndentCeiling: ceiling},
				extractor.Options{PdftotextFallback: fallback},
				log,
			)
			w.Run(cmd.Context(), jobs, workers)

			results := make([]batch.Result, 0, len(jobs))
			failed := 0
			for _, j := range jobs {
				r := j.Result()
				if r.Status == batch.StatusFailed {
					failed++
				}
				results = append(results, r)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			if err := enc.Encode(results); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(jobs))
			}
			return nil
		},
	}

	cmd.Flags().IntP("workers", "w", batch.DefaultConcurrency, "Maximum files parsed at once")
	cmd.Flags().Int("indent-ceiling", sections.DefaultIndentCeiling, "Lines indented deeper than this are never headers")
	cmd.Flags().Bool("pdftotext", true, "Fall back to pdftotext when the PDF reader finds no text")
	cmd.Flags().BoolP("verbose", "v", false, "Log progress to stderr")
	return cmd
}

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the sections a tender document is expected to contain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, catalog.DocumentTitle)
			for _, s := range catalog.All() {
				mark := " "
				if slices.Contains(catalog.DefaultSelection, s.ID) {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %2s. %s\n", mark, s.ID, s.CanonicalTitle)
			}
			fmt.Fprintln(out, "\n* included in chat context by default")
			return nil
		},
	}
}

func readInput(stdin io.Reader, path string) ([]byte, string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "stdin.txt", nil
	}
	if !extractor.IsSupportedExtension(path) {
		return nil, "", fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, filepath.Base(path), nil
}

// narrow keeps only the requested sections. The counts and the missing list
// describe the filtered view.
func narrow(doc *doctree.Document, ids []string) {
	doc.Sections = doc.Select(ids)
	doc.TotalSections = len(doc.Sections)
	doc.Missing = slices.DeleteFunc(doc.Missing, func(id string) bool {
		return !slices.Contains(ids, id)
	})
}

func writeSummary(w io.Writer, name string, doc *doctree.Document) {
	fmt.Fprintf(w, "%s: %d of %d sections found\n", name, doc.TotalSections, doc.TotalSections+len(doc.Missing))
	for _, s := range doc.Sections {
		fmt.Fprintf(w, "  %2s. %s (line %d, %d chars)\n", s.ID, s.Title, s.Line, s.ContentLength)
	}
	if len(doc.Missing) > 0 {
		fmt.Fprintf(w, "missing: %s\n", strings.Join(doc.Missing, ", "))
	}
}

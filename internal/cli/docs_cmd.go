package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/benedict2310/ngxer/internal/docsource"
	"github.com/benedict2310/ngxer/internal/names"
	"github.com/benedict2310/ngxer/internal/output"
	"github.com/spf13/cobra"
)

func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage the collection document store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newDocsImportCmd())
	cmd.AddCommand(newDocsStatsCmd())
	return cmd
}

func newDocsImportCmd() *cobra.Command {
	var markdownField string

	cmd := &cobra.Command{
		Use:   "import <collection> <file.json>",
		Short: "Import collection documents from a JSON export",
		Long: "The file holds a JSON array of documents, or an object keyed by\n" +
			"document id. Documents are upserted by (collection, id). Markdown\n" +
			"bodies are converted to HTML content so they render without a browser.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, file := args[0], args[1]
			if err := names.ValidateCollection(collection); err != nil {
				return exitCodeError(exitUsage, err)
			}
			rt, err := runtimeFromCommand(cmd)
			if err != nil {
				return err
			}

			f, err := os.Open(file)
			if err != nil {
				return exitCodeError(exitUsage, fmt.Errorf("open %s: %w", file, err))
			}
			defer f.Close()
			docs, err := docsource.DecodeDocuments(f)
			if err != nil {
				return exitCodeError(exitUsage, fmt.Errorf("%s: %w", file, err))
			}

			converted, err := docsource.ContentFromMarkdown(docs, markdownField)
			if err != nil {
				return err
			}
			if converted > 0 {
				rt.Logger.Info("markdown converted", "collection", collection, "documents", converted)
			}

			if err := os.MkdirAll(filepath.Dir(rt.Project.DocumentStore), 0o755); err != nil {
				return fmt.Errorf("create document store directory: %w", err)
			}
			src, err := docsource.OpenSQLite(cmd.Context(), rt.Project.DocumentStore)
			if err != nil {
				return err
			}
			defer src.Close()

			n, err := src.Import(cmd.Context(), collection, filepath.Base(file), docs)
			if err != nil {
				return err
			}
			rt.Logger.Info("documents imported", "collection", collection, "documents", n, "store", rt.Project.DocumentStore)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s into %s\n", output.Plural(n, "document"), collection)
			if len(rt.Project.RendersFor(collection)) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: no databaseRender is configured for %s\n", collection)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&markdownField, "markdown-field", docsource.DefaultMarkdownField, "Document field holding Markdown used as content when content is empty (empty to disable)")

	return cmd
}

func newDocsStatsCmd() *cobra.Command {
	var outputMode string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show document counts per collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(outputMode)
			if err != nil {
				return exitCodeError(exitUsage, err)
			}
			rt, err := runtimeFromCommand(cmd)
			if err != nil {
				return err
			}
			src, err := rt.openSource(cmd.Context())
			if err != nil {
				return err
			}
			if src == nil {
				src, err = docsource.OpenSQLite(cmd.Context(), rt.Project.DocumentStore)
				if err != nil {
					return err
				}
			}
			defer src.Close()

			stats, err := src.Stats(cmd.Context())
			if err != nil {
				return err
			}

			type collectionStats struct {
				Collection   string `json:"collection" yaml:"collection"`
				Documents    int64  `json:"documents" yaml:"documents"`
				LastImportAt string `json:"lastImportAt,omitempty" yaml:"lastImportAt,omitempty"`
				Rendered     bool   `json:"rendered" yaml:"rendered"`
			}
			payload := make([]collectionStats, 0, len(stats))
			for _, s := range stats {
				payload = append(payload, collectionStats{
					Collection:   s.Collection,
					Documents:    s.DocumentCount,
					LastImportAt: s.LastImportAt,
					Rendered:     len(rt.Project.RendersFor(s.Collection)) > 0,
				})
			}
			if format != output.FormatTable {
				return output.WriteStructured(cmd.OutOrStdout(), format, payload)
			}
			if len(payload) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No documents found.")
				return nil
			}
			rows := make([][]string, 0, len(payload))
			for _, s := range payload {
				rows = append(rows, []string{s.Collection, strconv.FormatInt(s.Documents, 10), output.OrNone(s.LastImportAt), strconv.FormatBool(s.Rendered)})
			}
			return output.WriteTable(cmd.OutOrStdout(), []string{"COLLECTION", "DOCUMENTS", "LAST_IMPORT", "RENDERED"}, rows)
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "table", "Output format: table|json|yaml")

	return cmd
}

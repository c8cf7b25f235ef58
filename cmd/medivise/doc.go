package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/medivise/medivise/internal/core"
	"github.com/medivise/medivise/internal/service/ui"
	"github.com/medivise/medivise/pkg/log"
)

var (
	docUser    string
	docNoLearn bool
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage stored documents",
}

var docAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Store a document for later questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		text, err := loadDocumentText(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		doc := core.Document{
			ID:       filepath.Base(args[0]),
			Filename: filepath.Base(args[0]),
			FullText: text,
		}
		if err := a.docs.SaveDocument(ctx, doc); err != nil {
			return fmt.Errorf("save document: %w", err)
		}

		log.FromCtx(ctx).Info().Str("doc_id", doc.ID).Int("chars", len(text)).Msg("document stored")
		fmt.Printf("stored %s\n", ui.UsageStyle.Render(doc.ID))

		if !docNoLearn {
			if learned := a.memories.LearnFromDocument(ctx, docUser, doc.ID, text); learned > 0 {
				fmt.Printf("learned %d fact(s) from the document\n", learned)
			}
		}
		return nil
	},
}

var docListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		docs, err := a.docs.ListDocuments(ctx)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Println("no documents stored")
			return nil
		}
		for _, d := range docs {
			fmt.Printf("%s  %s  %s\n",
				ui.UsageStyle.Render(d.ID),
				d.Filename,
				ui.DescStyle.Render(d.CreatedAt.Format("2006-01-02 15:04")))
		}
		return nil
	},
}

func init() {
	docAddCmd.Flags().StringVar(&docUser, "user", "default", "user id for memory building")
	docAddCmd.Flags().BoolVar(&docNoLearn, "no-learn", false, "skip building memory facts from the document")
	docCmd.AddCommand(docAddCmd)
	docCmd.AddCommand(docListCmd)
	rootCmd.AddCommand(docCmd)
}

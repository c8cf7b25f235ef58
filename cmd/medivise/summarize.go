package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/medivise/medivise/internal/core"
	"github.com/medivise/medivise/internal/service/summarizer"
	"github.com/medivise/medivise/pkg/conv"
	"github.com/medivise/medivise/pkg/log"
)

var (
	summarizeStyle   string
	summarizeFormat  string
	summarizeUser    string
	summarizeNoLearn bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file>",
	Short: "Summarize a medical document",
	Long:  `Runs the de-identify, chunk, map-reduce pipeline over a document and prints the rendered summary.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()
		logger := log.FromCtx(ctx)

		if summarizeStyle != core.StyleClinical && summarizeStyle != core.StylePatientFriendly {
			return fmt.Errorf("unknown style %q (want %s or %s)", summarizeStyle, core.StyleClinical, core.StylePatientFriendly)
		}
		if summarizeFormat != "md" && summarizeFormat != "html" {
			return fmt.Errorf("unknown format %q (want md or html)", summarizeFormat)
		}

		text, err := loadDocumentText(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		docID := filepath.Base(args[0])
		logger.Info().Str("doc_id", docID).Str("style", summarizeStyle).Msg("summarizing document")

		doc, err := a.summarizer.Summarize(ctx, text, summarizeStyle, docID)
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}

		if !summarizeNoLearn {
			if learned := a.memories.LearnFromDocument(ctx, summarizeUser, docID, text); learned > 0 {
				logger.Info().Int("facts", learned).Msg("learned facts from the document")
			}
		}

		md := summarizer.Render(doc)
		if summarizeFormat == "html" {
			fmt.Println(conv.MarkdownToHTML([]byte(md)))
			return nil
		}
		fmt.Println(md)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeStyle, "style", core.StylePatientFriendly, "summary style: clinical or patient-friendly")
	summarizeCmd.Flags().StringVar(&summarizeFormat, "format", "md", "output format: md or html")
	summarizeCmd.Flags().StringVar(&summarizeUser, "user", "default", "user id for memory building")
	summarizeCmd.Flags().BoolVar(&summarizeNoLearn, "no-learn", false, "skip building memory facts from the document")
	rootCmd.AddCommand(summarizeCmd)
}

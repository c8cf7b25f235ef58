package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medivise/medivise/internal/core"
	"github.com/medivise/medivise/internal/service/chat"
	"github.com/medivise/medivise/pkg/log"
	"github.com/medivise/medivise/pkg/retry"
)

var (
	askDocID        string
	askConversation string
	askUser         string
	askNoLearn      bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about your documents",
	Long:  `Answers a question grounded in the conversation history and, when --doc is given, snippets from that document.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()
		logger := log.FromCtx(ctx)

		question := strings.Join(args, " ")

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		req := chat.AnswerRequest{
			ConversationID: askConversation,
			Question:       question,
		}
		if askDocID != "" {
			doc, err := a.docs.GetDocument(ctx, askDocID)
			if err != nil {
				return err
			}
			req.Doc = &doc
		}

		// Upstream failures are retryable; everything else is not.
		var answer core.ChatAnswer
		retrier := retry.NewDefaultRetrier()
		err = retrier.Do(ctx, func() error {
			var genErr error
			answer, genErr = a.assembler.Answer(ctx, req)
			if genErr != nil && !errors.Is(genErr, core.ErrUpstreamUnavailable) {
				return retry.Permanent(genErr)
			}
			return genErr
		})
		if err != nil {
			return fmt.Errorf("answer: %w", err)
		}

		if err := a.messages.AddMessage(ctx, askConversation, core.Message{Role: core.RoleUser, Content: question}); err != nil {
			return fmt.Errorf("persist question: %w", err)
		}
		if err := a.messages.AddMessage(ctx, askConversation, core.Message{Role: core.RoleAssistant, Content: answer.Answer}); err != nil {
			return fmt.Errorf("persist answer: %w", err)
		}

		if !askNoLearn {
			learned := a.memories.LearnFromChat(ctx, askUser, question, answer.Answer, askConversation)
			if learned > 0 {
				logger.Debug().Int("facts", learned).Msg("learned from this turn")
			}
		}

		fmt.Println(answer.Answer)
		if len(answer.Citations) > 0 {
			fmt.Println("\nSources:")
			for _, c := range answer.Citations {
				fmt.Printf("  - %s\n", c)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askDocID, "doc", "", "id of a stored document to ground the answer in")
	askCmd.Flags().StringVar(&askConversation, "conversation", "default", "conversation id")
	askCmd.Flags().StringVar(&askUser, "user", "default", "user id for memory")
	askCmd.Flags().BoolVar(&askNoLearn, "no-learn", false, "disable fact learning from this turn")
	rootCmd.AddCommand(askCmd)
}

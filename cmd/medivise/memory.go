package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medivise/medivise/internal/service/ui"
)

var (
	memoryUser  string
	memoryQuery string
	memoryLimit int
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect and grow the fact store",
}

var memoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List remembered facts, most trusted first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		facts, err := a.memories.RelevantFacts(ctx, memoryUser, memoryQuery, memoryLimit)
		if err != nil {
			return err
		}
		if len(facts) == 0 {
			fmt.Println("no facts remembered yet")
			return nil
		}
		for _, f := range facts {
			fmt.Printf("%s %s  %s  %s\n",
				ui.FlagStyle.Render(fmt.Sprintf("[%.2f]", f.Confidence)),
				ui.UsageStyle.Render(f.Category),
				f.Key,
				ui.DescStyle.Render(f.Value))
		}
		return nil
	},
}

var memoryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fact store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.memories.Summary(ctx, memoryUser)
		if err != nil {
			return err
		}

		fmt.Printf("%s %d\n", ui.TitleStyle.Render("total facts:"), stats.Total)
		for category, n := range stats.Categories {
			fmt.Printf("  %s %d\n", ui.UsageStyle.Render(category), n)
		}
		fmt.Printf("confidence: high %d, medium %d, low %d\n",
			stats.Confidence["high"], stats.Confidence["medium"], stats.Confidence["low"])
		return nil
	},
}

var memoryLearnCmd = &cobra.Command{
	Use:   "learn <statement>",
	Short: "Learn facts from a statement",
	Long:  `Runs the chat learning rules over a statement, e.g. "I take metformin 500mg".`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		statement := strings.Join(args, " ")
		learned := a.memories.LearnFromChat(ctx, memoryUser, statement, "", "cli")
		fmt.Printf("learned %d fact(s)\n", learned)
		return nil
	},
}

func init() {
	memoryCmd.PersistentFlags().StringVar(&memoryUser, "user", "default", "user id")
	memoryListCmd.Flags().StringVar(&memoryQuery, "query", "", "narrow facts by query keywords")
	memoryListCmd.Flags().IntVar(&memoryLimit, "limit", 20, "maximum facts to show")

	memoryCmd.AddCommand(memoryListCmd)
	memoryCmd.AddCommand(memoryStatsCmd)
	memoryCmd.AddCommand(memoryLearnCmd)
	rootCmd.AddCommand(memoryCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/examtopics-practice/backend/internal/sampler"
)

var sampleCmd = &cobra.Command{
	Use:   "sample <exam-id>",
	Short: "Draw a deterministic exam-mode question sample",
	Long: "Samples question numbers for a timed session. The same seed always " +
		"produces the same set, so a session can be shared or replayed.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		seed, _ := cmd.Flags().GetString("seed")

		questions, err := newLoader(cmd).Exam(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("load exam %q: %w", args[0], err)
		}

		picked := sampler.Indices(len(questions), count, seed)
		for _, idx := range picked {
			q := questions[idx]
			fmt.Printf("%4d  %s\n", idx+1, truncate(q.Text, 90))
		}
		return nil
	},
}

func init() {
	sampleCmd.Flags().Int("count", 10, "Number of questions to draw")
	sampleCmd.Flags().String("seed", "", "Sampling seed (empty draws a fresh random set)")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

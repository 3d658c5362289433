package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/examtopics-practice/backend/internal/mistakes"
)

var mistakesCmd = &cobra.Command{
	Use:   "mistakes <exam-id>",
	Short: "Show the questions currently in the mistakes working set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		user := userFlag(cmd)
		examID := args[0]

		questions, err := newLoader(cmd).Exam(cmd.Context(), examID)
		if err != nil {
			return fmt.Errorf("load exam %q: %w", examID, err)
		}

		ep := store.ExamProgress(user, examID)
		settings := store.ExamSettings(user, examID)
		threshold := settings.Threshold()

		set := mistakes.WorkingSet(questions, ep, threshold)
		if len(set) == 0 {
			fmt.Println("No mistakes outstanding.")
			return nil
		}

		for _, q := range set {
			p := ep[q.ID]
			fmt.Printf("%-6s wrong %d times, streak %d/%d  %s\n",
				q.ID, p.Wrong(), p.Streak(), threshold, truncate(q.Text, 70))
		}
		return nil
	},
}

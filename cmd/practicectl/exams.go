package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var examsCmd = &cobra.Command{
	Use:   "exams",
	Short: "List the available exams",
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := newLoader(cmd).Index(cmd.Context())
		if err != nil {
			return fmt.Errorf("load exam index: %w", err)
		}
		for _, exam := range index {
			if exam.QuestionCount > 0 {
				fmt.Printf("%-30s %s (%d questions)\n", exam.ID, exam.Title, exam.QuestionCount)
			} else {
				fmt.Printf("%-30s %s\n", exam.ID, exam.Title)
			}
		}
		return nil
	},
}

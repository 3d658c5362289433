package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear <exam-id>",
	Short: "Clear answer history for an exam",
	Long: "Resets status, timestamps, streaks, and selections for every " +
		"question in the exam. Bookmarks and lifetime wrong counts survive.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		if err := store.ClearExamProgress(userFlag(cmd), args[0]); err != nil {
			return fmt.Errorf("clear progress: %w", err)
		}
		fmt.Printf("Cleared answer history for %s.\n", args[0])
		return nil
	},
}

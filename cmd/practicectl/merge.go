package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <source-user> <target-user>",
	Short: "Merge one local user's progress and settings into another's",
	Long: "Runs the sign-in merge locally: progress from <source-user> is " +
		"folded into <target-user> field by field, keeping the target's values " +
		"where both sides answered and combining bookmarks.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		source, target := args[0], args[1]

		if err := store.MergeProgress(source, target); err != nil {
			return fmt.Errorf("merge progress: %w", err)
		}
		if err := store.MergeSettings(source, target); err != nil {
			return fmt.Errorf("merge settings: %w", err)
		}

		fmt.Printf("Merged %s into %s.\n", source, target)
		return nil
	},
}

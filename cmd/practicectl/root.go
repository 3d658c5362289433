package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/examtopics-practice/backend/internal/content"
	"github.com/examtopics-practice/backend/internal/progress"
)

var rootCmd = &cobra.Command{
	Use:   "practicectl",
	Short: "Inspect and manage local exam practice data",
	Long: "practicectl works against the same on-disk progress documents the " +
		"practice app keeps, so sessions, mistakes, and merges can be inspected " +
		"and driven from the terminal.",
}

func init() {
	rootCmd.PersistentFlags().String("data", "", "Directory holding progress documents (defaults to ~/.examtopics-practice)")
	rootCmd.PersistentFlags().String("content", "https://examtopics-practice.pages.dev/data", "Base URL of the exam content files")
	rootCmd.PersistentFlags().String("user", "guest", "Local user the command operates on")

	rootCmd.AddCommand(examsCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(mistakesCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(clearCmd)
}

// openStore opens the local progress store at --data, creating the
// directory on first use.
func openStore(cmd *cobra.Command) (*progress.Store, error) {
	dir, _ := cmd.Flags().GetString("data")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".examtopics-practice")
	}
	storage, err := progress.NewDirStorage(dir)
	if err != nil {
		return nil, fmt.Errorf("open data directory: %w", err)
	}
	return progress.New(storage), nil
}

func newLoader(cmd *cobra.Command) *content.Loader {
	baseURL, _ := cmd.Flags().GetString("content")
	return content.NewLoader(baseURL)
}

func userFlag(cmd *cobra.Command) string {
	user, _ := cmd.Flags().GetString("user")
	return user
}

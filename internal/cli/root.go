package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "picpurge",
	Short: "PicPurge is an image organization tool",
	Long: `A command-line tool to deduplicate, cluster, and organize large
image collections: it extracts content and perceptual hashes plus
camera metadata from every file, marks exact duplicates, groups
visually similar shots, and can sort the survivors into a
year/month hierarchy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

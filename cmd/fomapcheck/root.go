package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for fomapcheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fomapcheck",
		Short: "Check and fix object categories in FOnline map files",
		Long: `fomapcheck compares every object placed in FOnline map files (.fomap) with
the prototype item catalog. Objects whose recorded category (item or
scenery) disagrees with the category implied by their prototype are
corrected in place; nothing else in the file is touched.

Objects with a category that cannot be classified are listed in a report
for manual review and are never rewritten.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/causal"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of causal",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "causal version %s\n", strings.TrimSpace(causal.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

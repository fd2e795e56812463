package main

import (
	"fmt"

	"github.com/aretw0/causal/internal/presentation/graph"
	"github.com/aretw0/causal/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <theory> [program]",
	Short: "Export the string diagram of a program",
	Long:  `Compiles the program and outputs a Mermaid flowchart (graph LR) of its string diagram.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		highlight, _ := cmd.Flags().GetStringSlice("highlight")

		logger, closeLog, err := setupLogger(cmd)
		if err != nil {
			return err
		}
		defer closeLog()

		ws, cleanup, err := openWorkspace(cmd, logger, domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		defer cleanup()

		src, err := readSource(args, 1, cmd.InOrStdin())
		if err != nil {
			return err
		}

		t, err := ws.Compile(cmd.Context(), args[0], src)
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if len(highlight) > 0 {
			overlay = &graph.Overlay{Highlight: highlight}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(t, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringSlice("highlight", nil, "Generator names to highlight")
}

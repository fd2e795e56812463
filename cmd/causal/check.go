package main

import (
	"fmt"

	"github.com/aretw0/causal/internal/presentation/tui"
	"github.com/aretw0/causal/pkg/domain"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [theory...]",
	Short: "Load theories and report whether they are well formed",
	Long: `Loads every theory in the repository (or only the named ones), validating
signatures and equations, and prints a summary of each.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")

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

		ctx := cmd.Context()
		names := args
		if len(names) == 0 {
			if names, err = ws.Theories(ctx); err != nil {
				return err
			}
		}

		render := tui.NewRenderer()
		out := cmd.OutOrStdout()
		failed := 0
		for _, name := range names {
			p, err := ws.Theory(ctx, name)
			if err != nil {
				failed++
				fmt.Fprintln(out, tui.Status(false, fmt.Sprintf("%s: %v", name, err)))
				continue
			}
			if !quiet {
				rendered, _ := render(tui.TheorySummary(p))
				fmt.Fprint(out, rendered)
			}
			fmt.Fprintln(out, tui.Status(true, name))
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d theories failed", failed, len(names))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolP("quiet", "q", false, "Only print the status lines")
}

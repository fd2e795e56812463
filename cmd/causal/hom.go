package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/causal/internal/presentation/tui"
	"github.com/aretw0/causal/pkg/adapters/file"
	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/homomorphism"
	"github.com/spf13/cobra"
)

var homCmd = &cobra.Command{
	Use:   "hom <file>",
	Short: "Validate a homomorphism file",
	Long: `Reads a homomorphism file (source and target theory paths, object and
generator images) and checks totality, typing and equation preservation.
Theory paths are resolved relative to the file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		budget, _ := cmd.Flags().GetInt("budget")

		logger, closeLog, err := setupLogger(cmd)
		if err != nil {
			return err
		}
		defer closeLog()

		opts := []homomorphism.Option{homomorphism.WithLogger(logger)}
		if budget > 0 {
			opts = append(opts, homomorphism.WithRewriteBudget(budget))
		}

		out := cmd.OutOrStdout()
		h, err := file.ReadHomomorphism(args[0], opts...)
		if errors.Is(err, domain.ErrValidationFailure) {
			failures := domain.ValidationErrors(err)
			for _, v := range failures {
				fmt.Fprintln(out, tui.Status(false, v.Error()))
			}
			return fmt.Errorf("%s is not a homomorphism (%d failures)", args[0], len(failures))
		}
		if err != nil {
			return err
		}

		rendered, _ := tui.NewRenderer()(tui.HomomorphismSummary(h))
		fmt.Fprint(out, rendered)
		fmt.Fprintln(out, tui.Status(true, h.String()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(homCmd)
}

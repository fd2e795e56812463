package main

import (
	"encoding/json"
	"fmt"

	httpAdapter "github.com/aretw0/causal/pkg/adapters/http"
	"github.com/aretw0/causal/pkg/domain"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile <theory> [program]",
	Short: "Compile a program into a morphism term",
	Long: `Compiles a program (one Python-like def, read from a file or stdin) over the
named theory and prints the resulting term and its type.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

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

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(httpAdapter.CompileResponse{
				Term: t.String(),
				Dom:  t.Dom().Names(),
				Cod:  t.Cod().Names(),
			})
		}
		fmt.Fprintln(out, t.String())
		fmt.Fprintf(out, "%s -> %s\n", t.Dom(), t.Cod())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().Bool("json", false, "Print the result as JSON")
}

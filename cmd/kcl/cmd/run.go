package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cadkit/kcl-core/pkg/kcl"
)

var (
	evalJSON       string
	dumpMemory     bool
	units          string
	highlightEdges bool
	configFile     string
)

var runCmd = &cobra.Command{
	Use:   "run [file.json]",
	Short: "Evaluate a JSON-encoded AST fixture",
	Long: `run evaluates a program against a fresh memory and prints the
outcome.

The program is read either from a file (a JSON document shaped like
internal/kclastjson's fixture format) or inline via --eval.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")

		var raw []byte
		var err error
		switch {
		case evalJSON != "":
			raw = []byte(evalJSON)
		case len(args) == 1:
			raw, err = os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
		default:
			return fmt.Errorf("provide a file path or --eval")
		}

		opts := []kcl.Option{kcl.WithOutput(cmd.ErrOrStderr()), kcl.WithVerbose(verbose)}
		if configFile != "" {
			opts = append(opts, kcl.WithConfigFile(configFile))
		}
		if units != "" {
			opts = append(opts, kcl.WithUnits(units))
		}
		if highlightEdges {
			opts = append(opts, kcl.WithHighlightEdges(true))
		}

		engine, err := kcl.New(opts...)
		if err != nil {
			return fmt.Errorf("initializing engine: %w", err)
		}

		result := engine.CompileFromJSON(context.Background(), raw)
		if !result.Success() {
			exitWithError("%v", result.Err)
			return nil
		}
		if dumpMemory {
			fmt.Fprintln(cmd.OutOrStdout(), result.Output())
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&evalJSON, "eval", "e", "", "inline JSON-encoded AST program")
	runCmd.Flags().BoolVar(&dumpMemory, "dump-memory", true, "print the final program memory")
	runCmd.Flags().StringVar(&units, "units", "", "scene unit system (overrides config)")
	runCmd.Flags().BoolVar(&highlightEdges, "highlight-edges", false, "enable edge-line highlighting")
	runCmd.Flags().StringVar(&configFile, "config", "", "path to a YAML engine configuration file")
	rootCmd.AddCommand(runCmd)
}

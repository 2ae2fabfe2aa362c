package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "kcl",
	Short: "KCL program-memory evaluator",
	Long: `kcl is a Go implementation of the KCL parametric-CAD DSL's
tree-walking interpreter core.

It evaluates a parsed program against a program memory, dispatching
sketch/extrude pipeline calls to a modeling engine (a mock by default).
Lexing and parsing the DSL's textual syntax are out of scope for this
core, so "kcl run" consumes a JSON-encoded AST fixture rather than raw
.kcl source — see "kcl run --help".`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Main runs the CLI and returns a process exit code. It is the
// testscript.RunMain entry point (github.com/rogpeppe/go-internal/
// testscript) for this package's end-to-end fixture tests, which invoke
// "kcl" as if it were a separate binary.
func Main() int {
	if err := Execute(); err != nil {
		return 1
	}
	return 0
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose diagnostic logging")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}

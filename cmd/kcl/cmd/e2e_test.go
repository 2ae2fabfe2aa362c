// End-to-end CLI fixtures: testdata/script/*.txtar files run "kcl run"
// against a JSON-encoded program fixture and assert on stdout, following
// the teacher's cmd/dwscript file-driven integration test style
// (testdata/ffi/*.dws + *.expected), adapted to rogpeppe/go-internal's
// testscript harness rather than hand-rolled file comparison.
package cmd_test

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/cadkit/kcl-core/cmd/kcl/cmd"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"kcl": cmd.Main,
	}))
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}

package main

import (
	"os"

	"github.com/cadkit/kcl-core/cmd/kcl/cmd"
)

func main() {
	os.Exit(cmd.Main())
}

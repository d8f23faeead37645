package main

import (
	"github.com/orivej/e"

	"github.com/go-delve/regxfer/cmd/regxfer/cmds"
	"github.com/go-delve/regxfer/pkg/version"
)

// Build is the git sha of this binaries build.
var Build string

func main() {
	if Build != "" {
		version.RegxferVersion.Build = Build
	}
	e.Exit(cmds.New().Execute())
}

package main

import (
	"github.com/librarium/bookshelf/internal/cli"
)

// Version information - set at build time via ldflags
var Version = "dev"

func main() {
	cli.Execute(Version)
}

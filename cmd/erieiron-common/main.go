package main

import (
	"os"

	"github.com/erieironllc/erieiron-public-common/cmd/erieiron-common/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

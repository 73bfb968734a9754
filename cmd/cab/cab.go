package main

import (
	"github.com/cabforge/cab/pkg/cli"
	"github.com/cabforge/cab/pkg/util/console"
)

func main() {
	cmd, err := cli.NewRootCommand()
	if err != nil {
		console.Fatalf("%s", err)
	}
	if err := cmd.Execute(); err != nil {
		console.Fatalf("%s", err)
	}
}

package main

import (
	"fmt"
	"os"

	"raffledash/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitStatus(err))
	}
}

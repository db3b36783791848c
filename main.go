package main

import (
	"fmt"
	"os"

	"github.com/thiagokokada/git-bstat/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "git-bstat: %v\n", err)
		os.Exit(cmd.ExitCode(err))
	}
}

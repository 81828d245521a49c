package main

import (
	"context"
	"fmt"
	"os"

	"github.com/carverauto/fleetradar/pkg/cli"
)

func main() {
	cfg, err := cli.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Help || cfg.SubCmd == "" || cfg.SubCmd == "help" {
		cli.ShowHelp()
		return
	}

	if err := cli.Run(context.Background(), cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

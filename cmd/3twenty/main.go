// Package main is the entry point for the 3twenty CLI.
package main

import (
	"os"

	"github.com/web3twenty/3twenty-wallet/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}

// Command revledger records project revenue per period, distributes it, and
// tracks investor claims in a local ledger.
package main

import (
	"fmt"
	"os"

	"github.com/bitfsorg/revledger-go/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "revledger:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

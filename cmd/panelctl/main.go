package main

import (
	"os"

	"github.com/odyssey-erp/userpanel/cmd/panelctl/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

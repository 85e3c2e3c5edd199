package main

import (
	"os"

	"github.com/zerkz/dxmcp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/modir/modir/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

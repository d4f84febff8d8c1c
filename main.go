package main

import (
	"os"

	"github.com/galatea-comics/galatea/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

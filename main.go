package main

import (
	"os"

	"github.com/vzahanych/aqhi-canada/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

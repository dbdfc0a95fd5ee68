package main

import (
	"os"

	"github.com/haekwon/reversal/cmd/reversal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/futureCreator/qcflow/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

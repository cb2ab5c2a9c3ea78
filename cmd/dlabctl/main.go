package main

import (
	"os"

	"github.com/SscSPs/dental_lab_app/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

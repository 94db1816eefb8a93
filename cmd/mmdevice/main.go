package main

import (
	"fmt"
	"os"

	_ "mmdevice/internal/adapter/demo"
	"mmdevice/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/KazKozDev/ConText/internal/cli"
)

// main runs without embedded assets; the desktop window serves ./frontend.
func main() {
	if err := cli.Execute(nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

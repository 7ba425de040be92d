package main

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/KazKozDev/ConText/internal/cli"
)

//go:embed frontend
var frontendFS embed.FS

func main() {
	assets, err := fs.Sub(frontendFS, "frontend")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := cli.Execute(assets); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/datawerks/dataroot/cmd/dataroot"
	"github.com/datawerks/dataroot/pkg/style"
)

func main() {
	rootCmd := dataroot.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		renderer := style.NewTerminalRenderer()
		fmt.Fprintln(os.Stderr, renderer.RenderError(err))

		// Show the full help for context
		fmt.Fprintln(os.Stderr)
		_ = rootCmd.Help()

		os.Exit(1)
	}
}

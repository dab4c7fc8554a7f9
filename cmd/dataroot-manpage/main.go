package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/datawerks/dataroot/cmd/dataroot"
	"github.com/datawerks/dataroot/internal/version"
)

func main() {
	rootCmd := dataroot.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "DATAROOT",
		Section: "1",
		Source:  "dataroot " + version.Version,
		Manual:  "dataroot manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}

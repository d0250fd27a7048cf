package main

import (
	"os"

	"github.com/samgubernick/TidyTabs-VisualStudio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/modlink/cmd/modlink"
	"github.com/arthur-debert/modlink/pkg/ui/styles"
)

func main() {
	rootCmd := modlink.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.GetStyle("Error").Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}

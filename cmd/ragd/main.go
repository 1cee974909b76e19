package main

import (
	"fmt"
	"os"

	"github.com/behzad94/showcase-1/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ragd",
		Short: "Local document question answering",
		Long:  "Answer natural-language questions over a local document corpus with cited, audited answers",
	}

	rootCmd.AddCommand(cli.AskCmd())
	rootCmd.AddCommand(cli.RebuildCmd())
	rootCmd.AddCommand(cli.WatchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

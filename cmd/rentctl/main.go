package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "rentctl",
		Short:   "rentctl - back-office tools for the rent payment reconciliation engine",
		Version: Version,
	}

	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felipeagger/htlb/internal/status"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask a running instance to shut down",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := status.RequestStop(socketPath); err != nil {
			return fmt.Errorf("failed to stop: %w", err)
		}
		fmt.Println("stop requested")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felipeagger/htlb/internal/status"
)

var statusFlags struct {
	json bool
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the running instance's status",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := status.QueryStatus(socketPath)
		if err != nil {
			return fmt.Errorf("failed to query status: %w", err)
		}
		if statusFlags.json {
			return report.WriteJSON(os.Stdout)
		}
		return report.WriteText(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusFlags.json, "json", false, "print status as JSON")
}

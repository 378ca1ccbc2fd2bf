package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felipeagger/htlb/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file without starting the proxy",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		fmt.Printf("configuration %q is valid: %d backend(s), algorithm=%s\n", cfgFile, len(cfg.Backends), cfg.Algorithm)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

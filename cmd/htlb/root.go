package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	socketPath string
)

var rootCmd = &cobra.Command{
	Use:   "htlb",
	Short: "HTTP reverse proxy load balancer",
	Long: `htlb terminates client HTTP/1.1 connections, selects a backend origin
under a pluggable policy (round-robin, least-connections, ip-hash), and
relays request and response framing byte-for-byte while a background health
supervisor keeps routing restricted to live origins.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", defaultSocketPath, "control socket path for status/stop")
}

const defaultSocketPath = "/tmp/htlb.sock"

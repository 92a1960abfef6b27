// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration with API keys redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.Dump(os.Stdout, cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

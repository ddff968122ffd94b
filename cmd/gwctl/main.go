// Copyright (C) 2025 Antigravity (platform@antigravity.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// gwctl is a small smoke-test client for a running gateway. It can hit the
// unary chat endpoint, drive a streaming turn over WebSocket, and check
// gateway health.
package main

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/antigravity/edge-gateway/pkg/logging"
)

var gatewayURL string

var rootCmd = &cobra.Command{
	Use:   "gwctl",
	Short: "Command-line client for the edge gateway",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(logging.Config{
			Level:   os.Getenv("LOG_LEVEL"),
			Service: "gwctl",
			Text:    true,
		})
		gatewayURL = strings.TrimSuffix(gatewayURL, "/")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&gatewayURL, "gateway",
		envOr("GATEWAY_URL", "http://localhost:8080"), "Base URL of the gateway")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(healthCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

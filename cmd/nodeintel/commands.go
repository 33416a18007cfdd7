// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/latticelabs/nodeintel/config"
)

// --- Global Command Variables ---
var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "nodeintel",
		Short: "A multi-matrix node intelligence store with an HTTP API",
		Long: `Nodeintel tracks a population of nodes across spatial, hierarchy,
relationship, and dataflow matrices and answers navigation and
cross-matrix analysis queries.`,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the node intelligence API server",
		Run:   runServe, // Defined in serve.go
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage the server configuration file",
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml to the configured path",
		Run:   runConfigInit,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML config file (empty uses defaults)")
	serveCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug mode")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(serveCmd, configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	path := configPath
	if path == "" {
		path = "config.yaml"
	}
	if err := config.WriteDefault(path); err != nil {
		log.Fatalf("Error writing default config: %v", err)
	}
	log.Printf("Wrote default configuration to %s", path)
}

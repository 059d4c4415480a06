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
	"fmt"
	"os"

	"github.com/AleutianAI/ChangePrism/pkg/config"
	"github.com/AleutianAI/ChangePrism/pkg/ux"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var configForce bool // Overwrite an existing config file

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the ChangePrism configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file with the default settings",
	Long: `Writes the default settings to ~/.changeprism/changeprism.yaml so they
can be edited in place. Environment variables still win over the file.`,
	Run: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration as YAML",
	Run:   runConfigShow,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false,
		"Overwrite an existing config file")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runConfigInit writes the starter config file.
func runConfigInit(cmd *cobra.Command, args []string) {
	path := config.DefaultPath()
	if path == "" {
		fatal("Cannot determine the home directory", nil)
	}
	if _, err := os.Stat(path); err == nil && !configForce {
		fatal(fmt.Sprintf("Config file already exists at %s (use --force to overwrite)", path), nil)
	}

	if err := config.WriteDefault(path); err != nil {
		fatal("Cannot write config file", err)
	}
	ux.Success(fmt.Sprintf("Wrote %s", path))
}

// runConfigShow prints the configuration after file and environment
// resolution, which makes override problems visible.
func runConfigShow(cmd *cobra.Command, args []string) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		fatal("Cannot render configuration", err)
	}
	fmt.Print(string(data))
}

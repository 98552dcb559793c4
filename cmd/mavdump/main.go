// Copyright 2024 Mavflow. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	jsonOutput   bool
	wantMessages bool
	wantEnums    bool
	wantCRC      bool
	descriptions bool
	overwrite    bool
	manifestPath string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "mavdump",
	Short: "mavdump compiles MAVLink dialect definitions and dumps the codec table",
}

var dumpCmd = &cobra.Command{
	Use:   "dump [definition.xml ...]",
	Short: "Compile definition files and dump the resulting dialect",
	RunE:  dump,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mavdump version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("You are using version 1.0.0")
	},
}

func init() {
	dumpCmd.Flags().BoolVar(&jsonOutput, "json", false, "Dump the whole dialect as JSON")
	dumpCmd.Flags().BoolVar(&wantMessages, "messages", false, "Dump message layouts")
	dumpCmd.Flags().BoolVar(&wantEnums, "enums", false, "Dump enum tables")
	dumpCmd.Flags().BoolVar(&wantCRC, "crc", false, "Dump per-message CRC seed bytes")
	dumpCmd.Flags().BoolVar(&descriptions, "descriptions", false, "Collect description text")
	dumpCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Let later definitions override conflicting entries")
	dumpCmd.Flags().StringVar(&manifestPath, "config", "", "YAML compile manifest listing definitions and options")
	dumpCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

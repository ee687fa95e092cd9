package cmd

import (
	"fmt"
	"log"
	"os"

	"snapfm/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "snapfm",
	Short: "SnapFM suggests songs for photos.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting SnapFM server...")
		// server.Start now handles its own port and logging for startup.
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

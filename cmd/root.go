package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the flowspace application
var rootCmd = &cobra.Command{
	Use:   "flowspace",
	Short: "Runs Google Workspace automation flows",
	Long: `flowspace executes workflow tasks against Google Workspace services
(Calendar, Drive, Sheets, Gmail and Chat webhooks) and watches those
services with polling triggers that run configured task steps for every
new event.

Commands:
  - run: Start the trigger runner with a TOML trigger configuration
  - tasks: List the registered workflow tasks
  - auth: Authorize a Google account for use by tasks and triggers`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "flowspace version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newTasksCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}

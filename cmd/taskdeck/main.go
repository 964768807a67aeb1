// Package main provides the taskdeck binary: a terminal client for the ERP
// task backend with role-aware views and live push reconciliation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const appName = "taskdeck"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Terminal dashboard for the ERP task system",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		tasksCmd(),
		taskCmd(),
		notificationsCmd(),
		activityCmd(),
		usersCmd(),
		statsCmd(),
		broadcastCmd(),
		watchCmd(),
	)
	return root
}

// Package main provides the entry point for the gymsync CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version   = "0.1.0-dev"
	globalGym string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "gymsync",
		Short:   "Reconciles scraped gym program listings against the event store",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&globalGym, "gym", "g", "", "Gym to operate on (default: all configured gyms)")

	rootCmd.AddCommand(
		newInitCmd(),
		newSyncCmd(),
		newIssuesCmd(),
		newDismissCmd(),
		newUndismissCmd(),
		newVerifyCmd(),
		newRulesCmd(),
		newPatternsCmd(),
		newStatusCmd(),
		newAuditCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hearthlink/tether"
	"github.com/hearthlink/tether/internal/care"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation pass against Hearth",
	Long: `Drain the pending-operation queues against the Hearth backend.
Queues that fail to drain fully are left untouched and retried on the
next pass.`,
	RunE: runSyncCmd,
}

func runSyncCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.HearthURL == "" {
		return fmt.Errorf("HEARTH_URL not configured")
	}

	client, err := tether.New(cfg, care.NewHTTPClient(cfg.HearthURL, cfg.APIKey, ""))
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("start client: %w", err)
	}

	report := client.Reconcile(ctx, "manual")

	fmt.Printf("Reconcile complete (took %s)\n", report.Duration.Round(time.Millisecond))
	fmt.Printf("  completions:   %d attempted, %d failed\n", report.Completions.Attempted, report.Completions.Failed)
	fmt.Printf("  alerts:        %d attempted, %d failed\n", report.Alerts.Attempted, report.Alerts.Failed)
	fmt.Printf("  location logs: %d attempted, %d failed\n", report.LocationLogs.Attempted, report.LocationLogs.Failed)
	fmt.Printf("  check-in:      synced=%v\n", report.CheckinSynced)
	return nil
}

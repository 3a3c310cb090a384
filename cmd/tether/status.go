package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/hearthlink/tether"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pairing and pending-queue status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := tether.New(cfg, nil)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	store := client.Store()

	session, err := store.ReadSession()
	if err != nil {
		color.Yellow("Device: not paired")
	} else {
		color.Green("Device: paired to household %s (patient %s)", session.HouseholdID, session.PatientID)
	}

	stats, err := client.Stats()
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}

	fmt.Println()
	printQueueDepth("Pending completions", stats.PendingCompletions)
	printQueueDepth("Pending alerts", stats.PendingAlerts)
	printQueueDepth("Pending location logs", stats.PendingLocationLogs)

	if stats.CheckinPending {
		color.Yellow("%-24s yes", "Pending check-in:")
	} else {
		color.Green("%-24s no", "Pending check-in:")
	}

	fmt.Println()
	if stats.LastReconcile.IsZero() {
		fmt.Println("Last reconcile: never")
	} else {
		fmt.Printf("Last reconcile: %s (%s ago)\n",
			stats.LastReconcile.Format(time.RFC3339),
			time.Since(stats.LastReconcile).Round(time.Second))
	}

	return nil
}

func printQueueDepth(label string, depth int) {
	if depth == 0 {
		color.Green("%-24s %d", label+":", depth)
		return
	}
	color.Yellow("%-24s %d", label+":", depth)
}

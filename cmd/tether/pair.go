package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hearthlink/tether"
	"github.com/hearthlink/tether/internal/care"
	"github.com/spf13/cobra"
)

var pairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Pair this device with a household",
	Long: `Pair this device with a household care plan. The session is
persisted locally so the background location task can resolve identity
even in a detached execution context.

Example:
  tether pair --patient-id pat_123 --household-id hh_456`,
	RunE: runPair,
}

var (
	pairPatientID   string
	pairHouseholdID string
)

func init() {
	pairCmd.Flags().StringVar(&pairPatientID, "patient-id", "", "Patient identifier assigned by Hearth")
	pairCmd.Flags().StringVar(&pairHouseholdID, "household-id", "", "Household identifier assigned by Hearth")
	_ = pairCmd.MarkFlagRequired("patient-id")
	_ = pairCmd.MarkFlagRequired("household-id")
}

func runPair(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var remote tether.Remote
	if cfg.HearthURL != "" {
		remote = care.NewHTTPClient(cfg.HearthURL, cfg.APIKey, "")
	}

	client, err := tether.New(cfg, remote)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session, err := client.Pair(ctx, pairPatientID, pairHouseholdID)
	if err != nil {
		return fmt.Errorf("pair: %w", err)
	}

	fmt.Printf("Paired device %s to household %s (patient %s)\n",
		session.DeviceID, session.HouseholdID, session.PatientID)
	return nil
}

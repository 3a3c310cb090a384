package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/hearthlink/tether"
	"github.com/hearthlink/tether/internal/care"
	"github.com/hearthlink/tether/internal/netmon"
	"github.com/hearthlink/tether/internal/sms"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the patient-device agent",
	Long: `Run the patient-device agent: cold-start reconciliation, the
connectivity monitor, and the liveness heartbeat. Stops cleanly on
SIGINT/SIGTERM.`,
	RunE: runAgent,
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var remote tether.Remote
	var hearth *care.HTTPClient
	if cfg.HearthURL != "" {
		hearth = care.NewHTTPClient(cfg.HearthURL, cfg.APIKey, "")
		remote = hearth
	}

	client, err := tether.New(cfg, remote)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	client.SetFallbackComposer(sms.ComposerFunc(openSMSComposer))

	var monitor *netmon.Monitor
	if hearth != nil {
		monitor = netmon.New(hearth, 30*time.Second, nil)
		client.SetConnectivityProbe(monitor.Status)
		monitor.Start()
		defer monitor.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("start client: %w", err)
	}
	client.SetAppState(ctx, tether.AppStateActive)

	fmt.Println("tether agent running (ctrl-c to stop)")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			fmt.Println("shutting down")
			return nil
		case status, ok := <-monitorEvents(monitor):
			if !ok {
				continue
			}
			client.SetNetworkStatus(ctx, status)
		}
	}
}

func monitorEvents(m *netmon.Monitor) <-chan tether.NetworkStatus {
	if m == nil {
		return nil // nil channel blocks forever; only signals remain
	}
	return m.Events()
}

// openSMSComposer hands the sms: URI to the platform. On the device builds
// this is bridged to the native composer; here it shells out to the OS URL
// opener as a stand-in.
func openSMSComposer(uri string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", uri).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", uri).Start()
	default:
		return exec.Command("xdg-open", uri).Start()
	}
}

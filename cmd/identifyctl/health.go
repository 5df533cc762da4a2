package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	flagHealthURL   string
	flagHealthToken string
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check identify service health and provider status (exits 1 if degraded)",
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().StringVar(&flagHealthURL, "url", envOrDefault("IDENTIFY_URL", "http://localhost:8766"), "identify server URL")
	healthCmd.Flags().StringVar(&flagHealthToken, "token", os.Getenv("IDENTIFY_API_TOKEN"), "identify API bearer token")
	rootCmd.AddCommand(healthCmd)
}

type healthResponse struct {
	Status        string           `json:"status"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Providers     []providerStatus `json:"providers"`
}

type providerStatus struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

func runHealth(cmd *cobra.Command, args []string) error {
	req, err := http.NewRequest(http.MethodGet, flagHealthURL+"/v1/health", nil)
	if err != nil {
		return err
	}
	if flagHealthToken != "" {
		req.Header.Set("Authorization", "Bearer "+flagHealthToken)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach identify: %w", err)
	}
	defer resp.Body.Close()

	var h healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	started := time.Now().Add(-time.Duration(h.UptimeSeconds) * time.Second)
	fmt.Fprintf(cmd.OutOrStdout(), "status: %s  up since %s\n", h.Status, humanize.Time(started))
	for _, p := range h.Providers {
		line := fmt.Sprintf("  %-12s  %s", p.Name, p.Status)
		if p.LatencyMs > 0 {
			line += fmt.Sprintf("  (%dms)", p.LatencyMs)
		}
		if p.Error != "" {
			line += "  error: " + p.Error
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}

	if h.Status != "ok" {
		return fmt.Errorf("identify status: %s", h.Status)
	}
	return nil
}

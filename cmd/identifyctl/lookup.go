package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/elabx-org/identify/internal/config"
	"github.com/elabx-org/identify/internal/provider"
	"github.com/elabx-org/identify/internal/secrets"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagURL     string
	flagToken   string
	flagAPIKey  string
	flagJSON    bool
	flagRetries int
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <email>",
	Short: "Resolve an email address locally, or through a running identify server with --url",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

func init() {
	lookupCmd.Flags().StringVar(&flagURL, "url", os.Getenv("IDENTIFY_URL"), "identify server URL (empty resolves locally)")
	lookupCmd.Flags().StringVar(&flagToken, "token", os.Getenv("IDENTIFY_API_TOKEN"), "identify API bearer token")
	lookupCmd.Flags().StringVar(&flagAPIKey, "api-key", "", "Google Plus API key or op:// reference for local lookups")
	lookupCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the raw result JSON")
	lookupCmd.Flags().IntVar(&flagRetries, "retries", 0, "Number of retries on transport or 5xx errors when using --url")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		result provider.Result
		err    error
	)
	if flagURL != "" {
		result, err = remoteLookup(ctx, flagURL, flagToken, args[0], flagRetries)
	} else {
		result, err = localLookup(ctx, args[0], flagAPIKey)
	}
	if err != nil {
		return err
	}
	if err := printResult(cmd.OutOrStdout(), result, flagJSON); err != nil {
		return err
	}
	if !result.Success {
		return errors.New(result.Error)
	}
	return nil
}

// localLookup walks the chain in-process using the same config the server reads.
func localLookup(ctx context.Context, addr, apiKey string) (provider.Result, error) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	cfg, err := config.Load(os.Getenv("IDENTIFY_CONFIG"))
	if err != nil {
		return provider.Result{}, fmt.Errorf("load config: %w", err)
	}
	if apiKey == "" {
		apiKey = cfg.Providers.GooglePlus.APIKey
	}
	src, err := secrets.FromConfig(ctx, cfg.OnePassword)
	if err != nil {
		return provider.Result{}, fmt.Errorf("1password: %w", err)
	}
	if apiKey, err = secrets.Expand(ctx, src, apiKey); err != nil {
		return provider.Result{}, fmt.Errorf("resolve api key: %w", err)
	}
	return provider.FromConfig(cfg, apiKey).Identify(ctx, addr), nil
}

func remoteLookup(ctx context.Context, baseURL, token, addr string, retries int) (provider.Result, error) {
	var (
		result  provider.Result
		lastErr error
	)
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			fmt.Fprintf(os.Stderr, "identifyctl: retry %d/%d after error: %v\n", attempt, retries, lastErr)
			time.Sleep(time.Duration(attempt) * time.Second)
		}
		result, lastErr = doLookup(ctx, baseURL, token, addr)
		if lastErr == nil {
			return result, nil
		}
		var permErr *permanentError
		if errors.As(lastErr, &permErr) {
			break
		}
	}
	return provider.Result{}, lastErr
}

func doLookup(ctx context.Context, baseURL, token, addr string) (provider.Result, error) {
	body, err := json.Marshal(map[string]string{"email": addr})
	if err != nil {
		return provider.Result{}, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/identify", bytes.NewReader(body))
	if err != nil {
		return provider.Result{}, &permanentError{err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Triggered-By", "identifyctl")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return provider.Result{}, fmt.Errorf("connect to identify: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK,
		resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusNotFound:
		// failed lookups still carry the result envelope
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return provider.Result{}, &permanentError{err: fmt.Errorf("identify returned HTTP %d", resp.StatusCode)}
	default:
		return provider.Result{}, fmt.Errorf("identify returned HTTP %d", resp.StatusCode)
	}

	var r provider.Result
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return provider.Result{}, &permanentError{err: fmt.Errorf("decode response: %w", err)}
	}
	return r, nil
}

func printResult(w io.Writer, r provider.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	if !r.Success {
		// reported on stderr by main
		return nil
	}
	fmt.Fprintf(w, "name:    %s\n", orDash(r.Name))
	fmt.Fprintf(w, "picture: %s\n", orDash(r.ProfilePicture))
	fmt.Fprintf(w, "source:  %s\n", r.Source)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

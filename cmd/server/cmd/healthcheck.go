package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

type healthcheckOptions struct {
	timeout time.Duration
	url     string
}

func newHealthcheckCommand(root *rootOptions) *cobra.Command {
	opts := &healthcheckOptions{}
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the server is healthy",
		Long: `Performs a health check by calling the /health endpoint.

This command is used by container HEALTHCHECK directives. It exits with
code 0 if the server answers {"status":"ok"}, non-zero otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			url := opts.url
			if url == "" {
				cfg, err := loadConfig(root)
				if err != nil {
					return fmt.Errorf("config error: %w", err)
				}
				url = fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			if err := checkHealth(ctx, http.DefaultClient, url); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "request timeout")
	cmd.Flags().StringVar(&opts.url, "url", "", "health check URL (default: http://localhost:{SERVER_PORT}/health)")
	return cmd
}

type healthResponse struct {
	Status string `json:"status"`
}

func checkHealth(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("parse health response: %w", err)
	}
	if body.Status != "ok" {
		return fmt.Errorf("unhealthy: status=%s", body.Status)
	}
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := newRootCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gorecon-cli",
		Short: "GoRecon CLI tool",
		Long:  `A command line interface for interacting with the GoRecon reconciliation API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoRecon API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 120*time.Second, "Request timeout")

	rootCmd.AddCommand(triggerRunCmd())
	rootCmd.AddCommand(listRunsCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(findingsCmd())

	return rootCmd
}

func triggerRunCmd() *cobra.Command {
	var startDate, endDate string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Trigger a reconciliation run for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := fmt.Sprintf(`{"start_date":%q,"end_date":%q}`, startDate, endDate)
			return doRequest(http.MethodPost, "/api/v1/reconciliation/runs", strings.NewReader(payload))
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Period start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "Period end date (YYYY-MM-DD)")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")

	return cmd
}

func listRunsCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List past reconciliation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/reconciliation/runs?limit=%d&offset=%d", limit, offset)
			return doRequest(http.MethodGet, path, nil)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of runs to skip")

	return cmd
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <batch-id>",
		Short: "Show the summary of one reconciliation run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/reconciliation/runs/"+args[0], nil)
		},
	}
}

func findingsCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "findings <batch-id>",
		Short: "List the findings of one reconciliation run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/reconciliation/runs/%s/findings?limit=%d&offset=%d", args[0], limit, offset)
			return doRequest(http.MethodGet, path, nil)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of findings to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of findings to skip")

	return cmd
}

func doRequest(method, path string, body io.Reader) error {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed any
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		fmt.Println(string(respBody))
		return nil
	}
	printJSON(parsed)

	return nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to format response: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

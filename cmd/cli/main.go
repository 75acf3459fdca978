package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "splitledger-cli",
		Short: "SplitLedger CLI tool",
		Long:  `A command line interface for interacting with the SplitLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the SplitLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(groupCmd(), balancesCmd(), settleCmd(), shareCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Group operations",
	}

	var name, currency string
	var members []string

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodPost, "/api/v1/groups", map[string]any{
				"name":         name,
				"currency":     currency,
				"member_names": members,
			})
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Group name")
	createCmd.Flags().StringVar(&currency, "currency", "USD", "ISO 4217 currency code")
	createCmd.Flags().StringArrayVar(&members, "member", nil, "Member name (repeatable)")
	_ = createCmd.MarkFlagRequired("name")

	getCmd := &cobra.Command{
		Use:   "get <group-id>",
		Short: "Get a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/groups/"+args[0], nil)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/groups", nil)
		},
	}

	cmd.AddCommand(createCmd, getCmd, listCmd)
	return cmd
}

func balancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances <group-id>",
		Short: "Show member balances for a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/groups/"+args[0]+"/balances", nil)
		},
	}
}

func settleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Settlement operations",
	}

	suggestCmd := &cobra.Command{
		Use:   "suggest <group-id>",
		Short: "Generate the minimal settlement plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodPost, "/api/v1/groups/"+args[0]+"/settlements/suggest", nil)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list <group-id>",
		Short: "List a group's settlements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/groups/"+args[0]+"/settlements", nil)
		},
	}

	payCmd := &cobra.Command{
		Use:   "pay <settlement-id>",
		Short: "Mark a settlement as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodPost, "/api/v1/settlements/"+args[0]+"/pay", nil)
		},
	}

	cmd.AddCommand(suggestCmd, listCmd, payCmd)
	return cmd
}

func shareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share operations",
	}

	payCmd := &cobra.Command{
		Use:   "pay <share-id>",
		Short: "Mark a share as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodPost, "/api/v1/shares/"+args[0]+"/pay", nil)
		},
	}

	unpayCmd := &cobra.Command{
		Use:   "unpay <share-id>",
		Short: "Revert a mistakenly paid share",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodPost, "/api/v1/shares/"+args[0]+"/unpay", nil)
		},
	}

	cmd.AddCommand(payCmd, unpayCmd)
	return cmd
}

func request(method, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s failed (status %d): %s", method, path, resp.StatusCode, truncate(string(respBody), 200))
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
		fmt.Printf("failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

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

	"github.com/iho/jobledger/internal/infrastructure/config"
	"github.com/iho/jobledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jobledger-cli",
		Short: "JobLedger CLI tool",
		Long:  `A command line interface for interacting with the JobLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the JobLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Bucket schema operations",
	}
	schemaCmd.AddCommand(validateSchemaCmd(), listSchemasCmd())

	calcCmd := &cobra.Command{
		Use:   "calc",
		Short: "Profit calculations",
	}
	calcCmd.AddCommand(calcProfitCmd())

	jobCmd := &cobra.Command{
		Use:   "job",
		Short: "Job operations",
	}
	jobCmd.AddCommand(finalizeJobCmd())

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	migrateCmd.AddCommand(migrateUpCmd(), migrateDownCmd())

	rootCmd.AddCommand(schemaCmd, calcCmd, jobCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func validateSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a bucket schema JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			result, err := postJSON("/api/v1/schemas/validate", payload)
			if err != nil {
				return err
			}

			printJSON(result)

			if valid, ok := result["is_valid"].(bool); ok && !valid {
				return fmt.Errorf("schema is invalid")
			}
			return nil
		},
	}
}

func listSchemasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bucket schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: timeout}
			resp, err := client.Get(baseURL + "/api/v1/schemas/")
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(body))
			}

			var listing struct {
				Schemas []struct {
					ID      string `json:"id"`
					Name    string `json:"name"`
					Buckets []any  `json:"buckets"`
				} `json:"schemas"`
			}
			if err := json.Unmarshal(body, &listing); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Printf("%-28s  %-30s  %s\n", "ID", "NAME", "BUCKETS")
			for _, s := range listing.Schemas {
				fmt.Printf("%-28s  %-30s  %d\n", s.ID, truncate(s.Name, 30), len(s.Buckets))
			}
			return nil
		},
	}
}

func calcProfitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profit <file>",
		Short: "Run an ad-hoc profit calculation from a ledger JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			result, err := postJSON("/api/v1/calc/profit", payload)
			if err != nil {
				return err
			}

			printJSON(result)
			return nil
		},
	}
}

func finalizeJobCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <job-id>",
		Short: "Finalize a job's allocation into an immutable snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := postJSON("/api/v1/jobs/"+args[0]+"/finalize", []byte("{}"))
			if err != nil {
				return err
			}

			printJSON(result)
			return nil
		},
	}
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath)
		},
	}
}

func migrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the last database migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath)
		},
	}
}

func postJSON(path string, payload []byte) (map[string]any, error) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(body))
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return result, nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to encode response: %v\n", err)
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

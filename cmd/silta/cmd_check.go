package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/silta/catalog"
	"github.com/yairfalse/silta/glean"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify connectivity to both APIs",
	Long: `Check that the Backstage catalog and the Glean indexing API are
reachable with the configured credentials. No data is modified.`,
	Example: `  silta check
  silta check --config prod.yaml`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	failed := false

	source, err := catalog.NewClient(catalog.Config{
		BaseURL:   cfg.Backstage.BaseURL,
		Token:     cfg.Backstage.Token,
		PageSize:  1,
		VerifySSL: cfg.VerifySSL(),
	}, logger)
	if err != nil {
		return fmt.Errorf("create catalog client: %w", err)
	}
	if err := source.Ping(ctx); err != nil {
		fmt.Printf("✗ Backstage catalog (%s): %v\n", cfg.Backstage.BaseURL, err)
		failed = true
	} else {
		fmt.Printf("✓ Backstage catalog (%s)\n", cfg.Backstage.BaseURL)
	}

	client := glean.NewClient(glean.Config{
		Instance:   cfg.Glean.Instance,
		APIKey:     cfg.Glean.APIKey,
		Datasource: cfg.Glean.Datasource,
	}, logger)
	if err := client.Ping(ctx); err != nil {
		fmt.Printf("✗ Glean indexing API (instance %s): %v\n", cfg.Glean.Instance, err)
		failed = true
	} else {
		fmt.Printf("✓ Glean indexing API (instance %s)\n", cfg.Glean.Instance)
	}

	if failed {
		return fmt.Errorf("connectivity check failed")
	}
	return nil
}

package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yairfalse/silta/catalog"
	"github.com/yairfalse/silta/types"
)

var showKind string

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "List catalog entities of a kind",
	Long: `Fetch entities of one kind from the Backstage catalog and print
a summary table. Useful for checking what a sync would pick up.`,
	Example: `  silta show                   # Components (default)
  silta show --kind API
  silta show --kind Group`,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVarP(&showKind, "kind", "k", types.KindComponent, "Entity kind to list")
}

func runShow(cmd *cobra.Command, args []string) error {
	if !types.IsKnownKind(showKind) {
		return fmt.Errorf("unknown kind %q (known: %s)", showKind, strings.Join(types.AllKinds, ", "))
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	source, err := catalog.NewClient(catalog.Config{
		BaseURL:   cfg.Backstage.BaseURL,
		Token:     cfg.Backstage.Token,
		PageSize:  cfg.Backstage.PageSize,
		VerifySSL: cfg.VerifySSL(),
	}, logger)
	if err != nil {
		return fmt.Errorf("create catalog client: %w", err)
	}

	entities, err := source.FetchEntities(cmd.Context(), showKind)
	if err != nil {
		return fmt.Errorf("fetch %s entities: %w", showKind, err)
	}
	if len(entities) == 0 {
		fmt.Printf("No %s entities found\n", showKind)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAMESPACE\tNAME\tTYPE\tLIFECYCLE\tOWNER")
	for _, e := range entities {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.Namespace(),
			e.Metadata.Name,
			orDash(e.SpecType()),
			orDash(e.Lifecycle()),
			orDash(e.Owner()),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d %s entities\n", len(entities), showKind)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/store"
)

var (
	leadsListLimit  int
	leadsImportFrom string
	leadsImportType string
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and manage stored leads",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return cfg.Validate("leads")
	},
}

var leadsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of stored leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.CountLeads(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the most recent leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		leads, err := st.LoadLeads(cmd.Context())
		if err != nil {
			return err
		}
		return printLeads(cmd.OutOrStdout(), latest(leads, leadsListLimit))
	},
}

var leadsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy leads from another store into the configured one, skipping duplicates",
	RunE: func(cmd *cobra.Command, args []string) error {
		if leadsImportFrom == "" {
			return eris.New("--from is required")
		}
		ctx := cmd.Context()

		src, err := store.Open(ctx, config.StoreConfig{Driver: leadsImportType, Path: leadsImportFrom, DatabaseURL: leadsImportFrom})
		if err != nil {
			return err
		}
		defer src.Close() //nolint:errcheck
		leads, err := src.LoadLeads(ctx)
		if err != nil {
			return err
		}

		dst, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer dst.Close() //nolint:errcheck

		added, err := dst.ImportLeads(ctx, leads)
		if err != nil {
			return err
		}
		zap.L().Info("imported leads",
			zap.String("from", leadsImportFrom),
			zap.Int("read", len(leads)),
			zap.Int("added", added),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d leads\n", added, len(leads))
		return nil
	},
}

// latest returns the last n leads, or all of them when n <= 0.
func latest(leads []model.Lead, n int) []model.Lead {
	if n <= 0 || n >= len(leads) {
		return leads
	}
	return leads[len(leads)-n:]
}

func printLeads(w io.Writer, leads []model.Lead) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tNAME\tPHONE\tCATEGORY\tCHANNEL\tLINK")
	for _, l := range leads {
		date := ""
		if !l.DateAdded.IsZero() {
			date = l.DateAdded.Local().Format(store.DateLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			date, oneLine(l.Name), l.Phone, l.Category, oneLine(l.Channel), l.MessageLink)
	}
	return tw.Flush()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func init() {
	leadsListCmd.Flags().IntVar(&leadsListLimit, "limit", 20, "number of most recent leads to print (0 = all)")
	leadsImportCmd.Flags().StringVar(&leadsImportFrom, "from", "", "path or connection string of the source store")
	leadsImportCmd.Flags().StringVar(&leadsImportType, "from-driver", "xlsx", "driver of the source store (xlsx, sqlite or postgres)")

	leadsCmd.AddCommand(leadsCountCmd, leadsListCmd, leadsImportCmd)
	rootCmd.AddCommand(leadsCmd)
}

// Package cmd - rate table commands
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"plan-advisor/adapters/ratesdb"
	"plan-advisor/adapters/ratesfile"
	"plan-advisor/core/output"
	"plan-advisor/core/pricing"
	"plan-advisor/internal/config"
	"plan-advisor/internal/errors"
	"plan-advisor/internal/setup"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Inspect and move rate tables",
	Long: `Inspect the configured rate table and move it between CSV, XLSX and SQLite.

Examples:
  plan-advisor rates show
  plan-advisor rates verify
  plan-advisor rates import --from csv --db data/precos.db
  plan-advisor rates export --to xlsx --out precos.xlsx
  plan-advisor rates history`,
}

var ratesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the plan rows and module count of the configured rate table",
	RunE:  runRatesShow,
}

var ratesVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Load the configured rate table and print its content hash",
	RunE:  runRatesVerify,
}

var ratesImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a CSV or XLSX rate table into the SQLite store",
	RunE:  runRatesImport,
}

var ratesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the configured rate table as CSV or XLSX",
	RunE:  runRatesExport,
}

var ratesHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List imports recorded in the SQLite store",
	RunE:  runRatesHistory,
}

var (
	ratesFrom string
	ratesTo   string
	ratesDB   string
	ratesOut  string
)

func init() {
	rootCmd.AddCommand(ratesCmd)
	ratesCmd.AddCommand(ratesShowCmd, ratesVerifyCmd, ratesImportCmd, ratesExportCmd, ratesHistoryCmd)

	ratesImportCmd.Flags().StringVar(&ratesFrom, "from", config.SourceCSV, "source to import (csv, xlsx)")
	ratesImportCmd.Flags().StringVar(&ratesDB, "db", "", "SQLite store (default from config)")
	ratesHistoryCmd.Flags().StringVar(&ratesDB, "db", "", "SQLite store (default from config)")
	ratesExportCmd.Flags().StringVar(&ratesTo, "to", config.SourceCSV, "export format (csv, xlsx)")
	ratesExportCmd.Flags().StringVarP(&ratesOut, "out", "o", ".", "output directory for csv, file for xlsx")
}

func runRatesShow(cmd *cobra.Command, args []string) error {
	rt, err := setup.LoadRates(context.Background(), config.Get().Rates, logger())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Tabela de preços %s (%s: %s)\n\n", rt.ID, rt.Source, rt.Origin)
	writePlans(w, rt)
	fmt.Fprintf(w, "\n%d linhas de produtos, %d produtos\n", len(rt.Modules()), len(rt.Products()))
	return nil
}

func writePlans(w io.Writer, rt *pricing.RateTable) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIER\tPLANO\tPREÇO BASE\tINCLUÍDOS\tLIMITE\tEXTRA ≤10\tEXTRA ≤50\tEXTRA >50")
	for _, p := range rt.Plans() {
		limit := "-"
		if p.SeatLimit != nil {
			limit = fmt.Sprintf("%d", *p.SeatLimit)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			p.Tier, p.Name, output.FormatEuro(p.BasePrice), p.IncludedSeats, limit,
			p.BandPrices[0].String(), p.BandPrices[1].String(), p.BandPrices[2].String())
	}
	tw.Flush()
}

func runRatesVerify(cmd *cobra.Command, args []string) error {
	rt, err := setup.LoadRates(context.Background(), config.Get().Rates, logger())
	if err != nil {
		return err
	}
	if !rt.Verify() {
		return errors.Newf(errors.TypeRates, "rate table %s failed its content hash check", rt.ID)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", rt.ContentHash.Hex(), rt.ID)
	return nil
}

func runRatesImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get().Rates
	if ratesFrom == config.SourceDatabase {
		return errors.Input("cannot import from the SQLite store into itself")
	}
	cfg.Source = ratesFrom
	rt, err := setup.LoadRates(ctx, cfg, logger())
	if err != nil {
		return err
	}

	store, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	rec, err := store.Import(ctx, rt)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported rate table %s (%d plans, %d module rows) as %s\n",
		rec.RateTableID, rec.Plans, rec.Modules, rec.ID)
	return nil
}

func runRatesHistory(cmd *cobra.Command, args []string) error {
	store, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	records, err := store.Imports(context.Background())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "IMPORTED\tRATE TABLE\tPLANS\tMODULES\tORIGIN")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", r.ImportedAt.Format("2006-01-02 15:04:05"), r.RateTableID, r.Plans, r.Modules, r.Origin)
	}
	return tw.Flush()
}

func openStore() (*ratesdb.RateStore, func(), error) {
	path := ratesDB
	if path == "" {
		path = config.Get().Rates.Database
	}
	db, err := ratesdb.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return ratesdb.NewRateStore(db), func() { db.Close() }, nil
}

func runRatesExport(cmd *cobra.Command, args []string) error {
	rt, err := setup.LoadRates(context.Background(), config.Get().Rates, logger())
	if err != nil {
		return err
	}

	switch ratesTo {
	case config.SourceWorkbook:
		if err := ratesfile.WriteWorkbook(rt, ratesOut); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", ratesOut)
	case config.SourceCSV:
		if err := os.MkdirAll(ratesOut, 0755); err != nil {
			return errors.Wrap(errors.TypeInput, "failed to create output directory", err)
		}
		plansPath := filepath.Join(ratesOut, "precos_planos.csv")
		modulesPath := filepath.Join(ratesOut, "precos_produtos.csv")
		plans, err := os.Create(plansPath)
		if err != nil {
			return errors.Wrap(errors.TypeInput, "failed to create plan file", err)
		}
		defer plans.Close()
		modules, err := os.Create(modulesPath)
		if err != nil {
			return errors.Wrap(errors.TypeInput, "failed to create module file", err)
		}
		defer modules.Close()
		if err := ratesfile.WriteCSV(rt, plans, modules); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s and %s\n", plansPath, modulesPath)
	default:
		return errors.Newf(errors.TypeInput, "unknown export format %q (expected csv or xlsx)", ratesTo)
	}
	return nil
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

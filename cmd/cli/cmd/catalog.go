// Package cmd - catalog commands
package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"plan-advisor/adapters/hclcatalog"
	"plan-advisor/core/catalog"
	"plan-advisor/internal/config"
	"plan-advisor/internal/errors"
	"plan-advisor/internal/setup"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and check the module catalog",
	Long: `Inspect the module catalog in use: the built-in catalog, overlaid with the
configured HCL file when there is one.

Examples:
  plan-advisor catalog show
  plan-advisor catalog show --format hcl > catalog.hcl
  plan-advisor catalog validate data/catalog.hcl`,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the catalog",
	RunE:  runCatalogShow,
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a catalog file, or the configured catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalogValidate,
}

var catalogFormat string

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogShowCmd, catalogValidateCmd)

	catalogShowCmd.Flags().StringVarP(&catalogFormat, "format", "f", "table", "output format (table, json, yaml, hcl)")
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	cat, err := setup.LoadCatalog(config.Get().Catalog)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	switch catalogFormat {
	case "hcl":
		return hclcatalog.Write(cat, w)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cat.Modules())
	case "yaml", "yml":
		return writeYAML(w, cat.Modules())
	case "table", "":
	default:
		return errors.Newf(errors.TypeInput, "unknown catalog format %q", catalogFormat)
	}

	for _, area := range cat.Areas() {
		fmt.Fprintf(w, "%s\n", area)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, def := range cat.ByArea(area) {
			tier := "-"
			if def.MinTier != 0 {
				tier = def.MinTier.String()
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", def.Name, tier, def.Shape)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	stats := cat.Stats()
	fmt.Fprintf(w, "%d módulos, %d funcionalidades legadas, %d regras, %d regiões\n",
		stats.Modules, stats.LegacyExtras, stats.Rules, stats.Regions)
	return nil
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	var (
		cat *catalog.Catalog
		err error
	)
	if len(args) == 1 {
		cat, err = hclcatalog.Load(args[0], nil)
	} else {
		cat, err = setup.LoadCatalog(config.Get().Catalog)
	}
	if err != nil {
		return err
	}

	if errs := cat.Validate(catalog.DefaultValidationRules()); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", e)
		}
		return errors.Newf(errors.TypeCatalog, "catalog has %d problems", len(errs))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Catalog OK: %d modules\n", cat.Stats().Modules)
	return nil
}

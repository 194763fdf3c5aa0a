// Package setup builds a calculator from configuration. It is shared by the
// CLI and the server so both resolve rate tables and catalogs the same way.
package setup

import (
	"context"

	"go.uber.org/zap"

	"plan-advisor/adapters/hclcatalog"
	"plan-advisor/adapters/ratesdb"
	"plan-advisor/adapters/ratesfile"
	"plan-advisor/core/catalog"
	"plan-advisor/core/engine"
	"plan-advisor/core/pricing"
	"plan-advisor/internal/config"
	"plan-advisor/internal/errors"
)

// LoadRates reads the rate table from the configured source
func LoadRates(ctx context.Context, cfg config.RatesConfig, logger *zap.Logger) (*pricing.RateTable, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Source {
	case config.SourceCSV, "":
		return ratesfile.NewLoader(logger).LoadCSV(ctx, cfg.PlansCSV, cfg.ModulesCSV)
	case config.SourceWorkbook:
		return ratesfile.NewLoader(logger).LoadWorkbook(cfg.Workbook)
	case config.SourceDatabase:
		db, err := ratesdb.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return nil, err
		}
		rt, err := ratesdb.NewRateStore(db).Load(ctx)
		if err != nil {
			return nil, err
		}
		logger.Info("rate table loaded",
			zap.String("source", rt.Source.String()),
			zap.String("id", string(rt.ID)),
		)
		return rt, nil
	default:
		return nil, errors.Newf(errors.TypeConfig, "unknown rate source %q", cfg.Source)
	}
}

// LoadCatalog returns the built-in catalog, overlaid with the configured file if any
func LoadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.Path == "" {
		return catalog.Default(), nil
	}
	return hclcatalog.Load(cfg.Path, nil)
}

// NewCalculator loads rates and catalog and builds a calculator
func NewCalculator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*engine.Calculator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rates, err := LoadRates(ctx, cfg.Rates, logger)
	if err != nil {
		return nil, err
	}
	cat, err := LoadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	return engine.NewCalculator(rates, cat, engine.WithLogger(logger.Named("engine"))), nil
}

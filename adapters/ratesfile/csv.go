package ratesfile

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"plan-advisor/core/pricing"
	"plan-advisor/core/types"
	"plan-advisor/internal/errors"
)

// Loader reads rate tables from files
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a loader; a nil logger disables logging
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// LoadCSV parses the plan and module files concurrently and builds a rate table
func (l *Loader) LoadCSV(ctx context.Context, plansPath, modulesPath string) (*pricing.RateTable, error) {
	var (
		plans   []types.PlanRate
		modules []types.ModuleRate
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := readCSV(ctx, plansPath)
		if err != nil {
			return err
		}
		plans, err = parsePlans(plansPath, records)
		return err
	})
	g.Go(func() error {
		records, err := readCSV(ctx, modulesPath)
		if err != nil {
			return err
		}
		modules, err = parseModules(modulesPath, records)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rt, err := build(pricing.SourceCSV, plansPath+";"+modulesPath, plans, modules)
	if err != nil {
		return nil, err
	}
	l.logger.Info("rate table loaded",
		zap.String("source", rt.Source.String()),
		zap.String("id", string(rt.ID)),
		zap.Int("plans", len(plans)),
		zap.Int("modules", len(modules)),
	)
	return rt, nil
}

// ParsePlansCSV reads plan rows from CSV
func ParsePlansCSV(r io.Reader, origin string) ([]types.PlanRate, error) {
	records, err := decodeCSV(r, origin)
	if err != nil {
		return nil, err
	}
	return parsePlans(origin, records)
}

// ParseModulesCSV reads module rows from CSV
func ParseModulesCSV(r io.Reader, origin string) ([]types.ModuleRate, error) {
	records, err := decodeCSV(r, origin)
	if err != nil {
		return nil, err
	}
	return parseModules(origin, records)
}

// WriteCSV writes the plan and module rows of a rate table
func WriteCSV(rt *pricing.RateTable, plans, modules io.Writer) error {
	pw := csv.NewWriter(plans)
	_ = pw.Write(PlanHeader)
	for _, p := range rt.Plans() {
		_ = pw.Write(planRecord(p))
	}
	pw.Flush()
	if err := pw.Error(); err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to write plan rows", err)
	}

	mw := csv.NewWriter(modules)
	_ = mw.Write(ModuleHeader)
	for _, m := range rt.Modules() {
		_ = mw.Write(moduleRecord(m))
	}
	mw.Flush()
	if err := mw.Error(); err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to write module rows", err)
	}
	return nil
}

func readCSV(ctx context.Context, path string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("rate file", path)
		}
		return nil, errors.Rates("failed to open rate file", err).WithContext("path", path)
	}
	defer f.Close()
	return decodeCSV(f, path)
}

func decodeCSV(r io.Reader, origin string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Parsing(origin+": malformed CSV", err)
	}
	return records, nil
}

// build assembles parsed rows into a rate table
func build(source pricing.RateSource, origin string, plans []types.PlanRate, modules []types.ModuleRate) (*pricing.RateTable, error) {
	b := pricing.NewRateTableBuilder().WithSource(source, origin)
	for _, p := range plans {
		b.AddPlan(p)
	}
	for _, m := range modules {
		b.AddModule(m)
	}
	rt, err := b.Build()
	if err != nil {
		return nil, errors.Rates("invalid rate table", err).WithContext("origin", origin)
	}
	return rt, nil
}

package ratesfile

import (
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"plan-advisor/core/pricing"
	"plan-advisor/internal/errors"
)

// Workbook sheet names
const (
	SheetPlans   = "planos"
	SheetModules = "produtos"
)

// LoadWorkbook reads the plan and module sheets of an XLSX workbook
func (l *Loader) LoadWorkbook(path string) (*pricing.RateTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Rates("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	planRows, err := f.GetRows(SheetPlans)
	if err != nil {
		return nil, errors.Parsing(path+": missing sheet "+SheetPlans, err)
	}
	plans, err := parsePlans(path+"#"+SheetPlans, planRows)
	if err != nil {
		return nil, err
	}

	moduleRows, err := f.GetRows(SheetModules)
	if err != nil {
		return nil, errors.Parsing(path+": missing sheet "+SheetModules, err)
	}
	modules, err := parseModules(path+"#"+SheetModules, moduleRows)
	if err != nil {
		return nil, err
	}

	rt, err := build(pricing.SourceWorkbook, path, plans, modules)
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

// WriteWorkbook exports a rate table to an XLSX workbook
func WriteWorkbook(rt *pricing.RateTable, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetPlans); err != nil {
		return errors.Internal("failed to name plan sheet", err)
	}
	if _, err := f.NewSheet(SheetModules); err != nil {
		return errors.Internal("failed to create module sheet", err)
	}

	plans, modules := rt.Plans(), rt.Modules()
	if err := writeRows(f, SheetPlans, PlanHeader, len(plans), func(i int) []string {
		return planRecord(plans[i])
	}); err != nil {
		return err
	}
	if err := writeRows(f, SheetModules, ModuleHeader, len(modules), func(i int) []string {
		return moduleRecord(modules[i])
	}); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Rates("failed to save workbook", err).WithContext("path", path)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, header []string, n int, row func(int) []string) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := setRow(f, sheet, i+2, row(i)); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, line int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return errors.Internal("invalid cell", err)
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return errors.Internal("failed to write row", err).WithContext("sheet", sheet)
	}
	return nil
}

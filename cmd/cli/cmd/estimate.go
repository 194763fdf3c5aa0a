// Package cmd - estimate and quote commands
package cmd

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"plan-advisor/core/output"
	"plan-advisor/core/types"
	"plan-advisor/internal/config"
	"plan-advisor/internal/errors"
	"plan-advisor/internal/setup"
	"plan-advisor/internal/validator"
)

var (
	estimateFlags requestFlags
	quoteFlags    requestFlags
	proposal      string
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Resolve the tier and price a migrating customer",
	Long: `Resolve the new-platform tier for a customer and price the plan, seats,
modules and connectors.

Examples:
  plan-advisor estimate --plan Corporate --subtype Completo --desktop 1 --web 1
  plan-advisor estimate --plan Advanced --desktop 5 --web 3 --module CRM=12 --web-module CRM=4
  plan-advisor estimate --plan Enterprise --module POS --pos 1,3 --region AO
  plan-advisor estimate --request cliente.yaml --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEstimate(cmd, &estimateFlags, nil)
	},
}

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a customer as quote lines, optionally against a proposed value",
	Long: `Price a customer and print the quote lines. With --proposal, every line is
rescaled so the total matches the proposed value and the implied discount is shown.

Examples:
  plan-advisor quote --plan Advanced --desktop 5 --web 3 --proposal 223.20
  plan-advisor quote --request cliente.yaml --proposal 1200 --format markdown`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var value *decimal.Decimal
		if proposal != "" {
			d, err := decimal.NewFromString(proposal)
			if err != nil || d.IsNegative() {
				return errors.Newf(errors.TypeInput, "invalid proposal %q", proposal)
			}
			value = &d
		}
		return runEstimate(cmd, &quoteFlags, value)
	},
}

func init() {
	estimateFlags.bind(estimateCmd)
	quoteFlags.bind(quoteCmd)
	quoteCmd.Flags().StringVar(&proposal, "proposal", "", "value proposed to the customer")

	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(quoteCmd)
}

func runEstimate(cmd *cobra.Command, flags *requestFlags, value *decimal.Decimal) error {
	ctx := context.Background()
	cfg := config.Get()
	log := logger()

	req, err := flags.build(cmd)
	if err != nil {
		return err
	}
	if req.Region == "" {
		req.Region = cfg.Region
	}
	if err := validator.New().Validate(&req); err != nil {
		var fields validator.ValidationErrors
		if stderrors.As(err, &fields) {
			return errors.Newf(errors.TypeInput, "invalid request: %s", fields.Error())
		}
		return err
	}

	formatName := flags.format
	if formatName == "" {
		formatName = cfg.Output.DefaultFormat
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return errors.Wrap(errors.TypeInput, "invalid format", err)
	}

	calc, err := setup.NewCalculator(ctx, cfg, log)
	if err != nil {
		return err
	}

	log.Debug("calculating", zap.String("request", describeRequest(req)))
	res := calc.Calculate(req)
	log.Info("calculated", requestSummary(res)...)

	reg, _ := calc.Catalog().Region(req.Region)
	report := output.NewReport(res, reg)
	if value != nil && value.IsPositive() {
		report.Quote.Simulate(*value)
	}

	if err := output.DefaultRegistry().Render(cmd.OutOrStdout(), format, report); err != nil {
		return fmt.Errorf("failed to render %s output: %w", format, err)
	}
	return nil
}

// requestSummary returns a short description of a resolved result for logs
func requestSummary(res *types.PlanResult) []zap.Field {
	return []zap.Field{
		zap.Int("tier", int(res.Tier)),
		zap.String("total", res.Total.String()),
		zap.Int("warnings", len(res.Warnings)),
	}
}

package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"plan-advisor/core/quote"
	"plan-advisor/core/region"
	"plan-advisor/core/types"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	totalStyle = lipgloss.NewStyle().
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6"))
)

const (
	productWidth = 64
	amountWidth  = 14
)

// CLIFormatter renders a styled terminal summary
type CLIFormatter struct{}

// NewCLIFormatter creates a CLI formatter
func NewCLIFormatter() *CLIFormatter {
	return &CLIFormatter{}
}

// Format returns the format type
func (f *CLIFormatter) Format() Format { return FormatCLI }

// Render produces output for the given report
func (f *CLIFormatter) Render(w io.Writer, report *Report) error {
	res := report.Result
	q := report.Quote
	if q == nil {
		q = quote.New(res)
	}
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Plano %s (%d)", res.TierName, res.Tier)))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Requisitos"))
	b.WriteString("\n")
	for _, s := range res.Binding {
		fmt.Fprintf(&b, "  %-14s %-40s plano %d\n", s.Source, s.Subject, s.Tier)
	}
	b.WriteString("\n")

	conv := report.converter()
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %5s %*s %*s", productWidth, "Produto", "Qtd", amountWidth, "Unitário", amountWidth, "Total")))
	b.WriteString("\n")
	for _, l := range q.Lines {
		b.WriteString(renderLine(l, conv, res.Regional))
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat("─", productWidth+2*amountWidth+8))
	b.WriteString("\n")
	b.WriteString(totalStyle.Render(fmt.Sprintf("%-*s %5s %*s %*s", productWidth, "Total", "", amountWidth, "", amountWidth, FormatEuro(res.Total))))
	b.WriteString("\n")
	if res.Regional != nil {
		b.WriteString(totalStyle.Render(fmt.Sprintf("%-*s %5s %*s %*s", productWidth,
			fmt.Sprintf("Total %s", res.Regional.Region), "", amountWidth, "", amountWidth,
			FormatMoney(res.Regional.Total, res.Regional.Currency))))
		b.WriteString("\n")
	}

	if p := q.Proposal; p != nil {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Simulação de migração"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "  Proposta: %s\n", FormatEuro(p.Value))
		fmt.Fprintf(&b, "  Desconto: %s\n", FormatPercent(p.Discount))
		for i, l := range p.Lines {
			fmt.Fprintf(&b, "  %s: %s → %s\n", strings.TrimSpace(l.Product), FormatEuro(q.Lines[i].UnitPrice), FormatEuro(l.UnitPrice))
		}
	}

	if len(res.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Avisos"))
		b.WriteString("\n")
		for _, msg := range res.Warnings {
			b.WriteString(warningStyle.Render("⚠ " + msg))
			b.WriteString("\n")
		}
	}
	if len(res.Notices) > 0 {
		b.WriteString("\n")
		for _, msg := range res.Notices {
			b.WriteString(noticeStyle.Render("ℹ " + msg))
			b.WriteString("\n")
		}
	}

	if res.RateTableID != "" {
		b.WriteString("\n")
		b.WriteString(detailStyle.Render("Tabela de preços: " + res.RateTableID))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderLine(l quote.Line, conv *region.Converter, regional *types.RegionalTotal) string {
	product := l.Product
	if l.Detail {
		product = "  " + product
	}
	unit, total := FormatEuro(l.UnitPrice), FormatEuro(l.Total)
	if conv != nil && regional != nil {
		unit = FormatMoney(conv.Convert(l.UnitPrice), regional.Currency)
		total = FormatMoney(conv.Convert(l.Total), regional.Currency)
	}
	row := fmt.Sprintf("%-*s %5d %*s %*s", productWidth, truncate(product, productWidth), l.Quantity, amountWidth, unit, amountWidth, total)
	if l.Detail {
		return detailStyle.Render(row)
	}
	return row
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

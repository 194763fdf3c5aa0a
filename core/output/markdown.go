package output

import (
	"fmt"
	"io"
	"strings"

	"plan-advisor/core/quote"
)

// MarkdownFormatter renders a markdown report
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a markdown formatter
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format returns the format type
func (f *MarkdownFormatter) Format() Format { return FormatMarkdown }

// Render produces output for the given report
func (f *MarkdownFormatter) Render(w io.Writer, report *Report) error {
	res := report.Result
	q := report.Quote
	if q == nil {
		q = quote.New(res)
	}
	var b strings.Builder

	fmt.Fprintf(&b, "# Plano %s\n\n", res.TierName)
	fmt.Fprintf(&b, "**Plano:** %d\n", res.Tier)
	fmt.Fprintf(&b, "**Previsão de Custo do Plano:** %s\n", FormatEuro(res.Total))
	if res.Regional != nil {
		fmt.Fprintf(&b, "**Total %s:** %s\n", res.Regional.Region, FormatMoney(res.Regional.Total, res.Regional.Currency))
	}
	b.WriteString("\n")

	b.WriteString("| Produto | Qtd | Unitário | Total |\n")
	b.WriteString("|---------|----:|---------:|------:|\n")
	for _, l := range q.Lines {
		product := l.Product
		if l.Detail {
			product = "↳ " + product
		}
		fmt.Fprintf(&b, "| %s | %d | %s | %s |\n", escape(product), l.Quantity, FormatEuro(l.UnitPrice), FormatEuro(l.Total))
	}
	fmt.Fprintf(&b, "| **Total** | | | **%s** |\n", FormatEuro(q.Total))

	if p := q.Proposal; p != nil {
		b.WriteString("\n## Valores com desconto\n\n")
		for i, l := range p.Lines {
			fmt.Fprintf(&b, "- %s: %s → %s\n", l.Product, FormatEuro(q.Lines[i].UnitPrice), FormatEuro(l.UnitPrice))
		}
		fmt.Fprintf(&b, "\nO desconto calculado é de %s.\n", FormatPercent(p.Discount))
	}

	if len(res.Warnings) > 0 {
		b.WriteString("\n## Avisos\n\n")
		for _, msg := range res.Warnings {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
	}
	if len(res.Notices) > 0 {
		b.WriteString("\n## Notas\n\n")
		for _, msg := range res.Notices {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

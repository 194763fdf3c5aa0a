package output

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"plan-advisor/core/types"
)

// Dot-grouped thousands
var printer = message.NewPrinter(language.German)

// FormatMoney renders an amount as whole units with dot thousands separators
// and a trailing currency, e.g. "1.234 €" or "262.500 AOA"
func FormatMoney(amount decimal.Decimal, currency types.Currency) string {
	symbol := string(currency)
	if currency == types.CurrencyEUR || currency == "" {
		symbol = "€"
	}
	return printer.Sprintf("%d %s", amount.RoundBank(0).IntPart(), symbol)
}

// FormatEuro renders a euro amount
func FormatEuro(amount decimal.Decimal) string {
	return FormatMoney(amount, types.CurrencyEUR)
}

// FormatPercent renders a fraction as a whole percentage
func FormatPercent(fraction decimal.Decimal) string {
	return fraction.Mul(decimal.NewFromInt(100)).Round(0).String() + "%"
}

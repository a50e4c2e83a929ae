// Package report renders client statements and the practice roster as markdown.
package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Formatter prints amounts in one currency.
type Formatter struct {
	currency money.Currency
}

// NewFormatter returns a formatter for an ISO 4217 code. Unknown codes are
// printed with two decimals and the code as symbol.
func NewFormatter(code string) Formatter {
	// money.New always yields a currency, registering unknown codes with defaults.
	return Formatter{currency: *money.New(0, code).Currency()}
}

// Code is the currency code.
func (f Formatter) Code() string { return f.currency.Code }

// Format prints amount, rounded to the currency's minor unit.
func (f Formatter) Format(amount float64) string {
	minor := decimal.NewFromFloat(amount).Shift(int32(f.currency.Fraction)).Round(0)
	return f.currency.Formatter().Format(minor.IntPart())
}

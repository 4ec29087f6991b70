package currency

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// symbolOverrides provides custom symbols where x/text defaults aren't ideal
var symbolOverrides = map[string]string{
	"SEK": "kr",
	"NOK": "kr",
	"DKK": "kr",
	"NPR": "Rs",
	"INR": "₹",
}

// homeLocale picks a formatting locale per currency
var homeLocale = map[string]language.Tag{
	"USD": language.AmericanEnglish,
	"EUR": language.German,
	"GBP": language.BritishEnglish,
	"SEK": language.Swedish,
	"NOK": language.Norwegian,
	"DKK": language.Danish,
	"CHF": language.German,
	"JPY": language.Japanese,
	"INR": language.MustParse("en-IN"),
	"NPR": language.MustParse("en-IN"),
	"AUD": language.MustParse("en-AU"),
	"CAD": language.CanadianFrench,
	"BRL": language.BrazilianPortuguese,
}

// IsISO reports whether code is a known ISO 4217 currency.
func IsISO(code string) bool {
	_, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	return err == nil
}

// Formatter renders amounts in one display currency.
type Formatter struct {
	Code    string
	unit    currency.Unit
	known   bool
	printer *message.Printer
}

// NewFormatter returns a formatter for code. Unknown codes format with the
// code itself as symbol.
func NewFormatter(code string) Formatter {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)

	tag, ok := homeLocale[code]
	if !ok {
		tag = language.English
	}
	return Formatter{
		Code:    code,
		unit:    unit,
		known:   err == nil,
		printer: message.NewPrinter(tag),
	}
}

func (f Formatter) symbol() string {
	if sym, ok := symbolOverrides[f.Code]; ok {
		return sym
	}
	if !f.known {
		return f.Code
	}
	return f.printer.Sprint(currency.NarrowSymbol(f.unit))
}

// isPrefix mirrors common placement; x/text does not expose CLDR symbol
// positioning.
func (f Formatter) isPrefix() bool {
	switch f.Code {
	case "USD", "GBP", "JPY", "AUD", "INR", "NPR":
		return true
	default:
		return false
	}
}

// Format formats amount with two fraction digits and the currency symbol.
func (f Formatter) Format(amount float64) string {
	formatted := f.printer.Sprint(number.Decimal(amount,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	if f.isPrefix() {
		return f.symbol() + formatted
	}
	return formatted + " " + f.symbol()
}

package utils

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MoneyFormatter renders amounts in one currency for one locale
type MoneyFormatter struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewMoneyFormatter creates a formatter for an ISO 4217 code and a BCP 47 locale
func NewMoneyFormatter(code, locale string) (*MoneyFormatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("invalid currency code %q: %w", code, err)
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	return &MoneyFormatter{
		unit:    unit,
		printer: message.NewPrinter(tag),
	}, nil
}

// Format renders amount with the currency symbol, e.g. "$ 255.00"
func (f *MoneyFormatter) Format(amount float64) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(amount)))
}

// Code returns the ISO 4217 code
func (f *MoneyFormatter) Code() string {
	return f.unit.String()
}

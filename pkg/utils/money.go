// Package utils provides small shared helpers: monetary parsing and
// formatting, and input validation.
package utils

import (
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// currencyNoise matches currency symbols, thousands separators and
// whitespace that appear in exported statement cells.
var currencyNoise = regexp.MustCompile(`[₹$€£,\s]`)

// ParseAmount parses a statement cell into a decimal amount. Currency
// symbols and thousands separators are stripped; parenthesised values
// are treated as negative, matching common accounting exports.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, nil
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = currencyNoise.ReplaceAllString(cleaned, "")
	if cleaned == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// FormatAmount renders an amount in the company currency for display
// payloads, e.g. "₹1,50,000.00" for INR.
func FormatAmount(amount decimal.Decimal, currencyCode string) string {
	cur := money.GetCurrency(currencyCode)
	if cur == nil {
		cur = money.GetCurrency(money.INR)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

// IsValidCurrency reports whether code is a known ISO 4217 currency.
func IsValidCurrency(code string) bool {
	return money.GetCurrency(strings.ToUpper(code)) != nil
}

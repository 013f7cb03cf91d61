package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Money represents a monetary value in the smallest currency unit (paise for INR).
// Amounts are drawn as floats and rounded once into Money, so every value
// written to CSV carries exactly two decimals.
type Money int64

// Currency represents a currency with its formatting rules
type Currency struct {
	Code          string // ISO 4217 code (e.g., "INR")
	Symbol        string // Display symbol (e.g., "₹")
	SymbolFirst   bool   // True if symbol comes before amount
	DecimalPlaces int
	ThousandsSep  string
	DecimalSep    string
}

// Currencies known to the report formatter
var Currencies = map[string]Currency{
	"INR": {Code: "INR", Symbol: "₹", SymbolFirst: true, DecimalPlaces: 2, ThousandsSep: ",", DecimalSep: "."},
	"USD": {Code: "USD", Symbol: "$", SymbolFirst: true, DecimalPlaces: 2, ThousandsSep: ",", DecimalSep: "."},
}

// DefaultCurrency is used when a currency code is not found
var DefaultCurrency = Currencies["INR"]

// Paise creates a Money value from minor units only
func Paise(paise int64) Money {
	return Money(paise)
}

// Rupees creates a Money value from whole major units
func Rupees(rupees int64) Money {
	return Money(rupees * 100)
}

// FromFloat creates a Money value from a float64 amount in major units,
// rounding half away from zero to the nearest minor unit.
func FromFloat(amount float64) Money {
	if amount >= 0 {
		return Money(amount*100 + 0.5)
	}
	return Money(amount*100 - 0.5)
}

// ToFloat returns the value in major units (for ratios and display only)
func (m Money) ToFloat() float64 {
	return float64(m) / 100
}

// MulFloat multiplies by a float and rounds to nearest minor unit
func (m Money) MulFloat(f float64) Money {
	result := float64(m) * f
	if result >= 0 {
		return Money(result + 0.5)
	}
	return Money(result - 0.5)
}

// Clamp limits m to [lo, hi]
func (m Money) Clamp(lo, hi Money) Money {
	if m < lo {
		return lo
	}
	if m > hi {
		return hi
	}
	return m
}

// String returns the plain two-decimal form used in CSV output (e.g., "123.45")
func (m Money) String() string {
	negative := m < 0
	if negative {
		m = -m
	}
	result := fmt.Sprintf("%d.%02d", int64(m)/100, int64(m)%100)
	if negative {
		result = "-" + result
	}
	return result
}

// ParseMoney parses a plain decimal string such as "1234.5" or "99.99".
func ParseMoney(s string) (Money, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}
	return FromFloat(f), nil
}

// Format formats the money value with the given currency
func (m Money) Format(currencyCode string) string {
	currency, ok := Currencies[currencyCode]
	if !ok {
		currency = DefaultCurrency
	}

	negative := m < 0
	if negative {
		m = -m
	}

	multiplier := int64(1)
	for i := 0; i < currency.DecimalPlaces; i++ {
		multiplier *= 10
	}

	whole := int64(m) / multiplier
	frac := int64(m) % multiplier

	result := formatWithSeparator(whole, currency.ThousandsSep)
	if currency.DecimalPlaces > 0 {
		result += currency.DecimalSep + fmt.Sprintf("%0*d", currency.DecimalPlaces, frac)
	}

	if currency.SymbolFirst {
		result = currency.Symbol + result
	} else {
		result = result + " " + currency.Symbol
	}

	if negative {
		result = "-" + result
	}
	return result
}

// formatWithSeparator adds thousands separators to a number
func formatWithSeparator(n int64, sep string) string {
	str := strconv.FormatInt(n, 10)
	if len(str) <= 3 || sep == "" {
		return str
	}

	var result strings.Builder
	startOffset := len(str) % 3
	if startOffset == 0 {
		startOffset = 3
	}

	result.WriteString(str[:startOffset])
	for i := startOffset; i < len(str); i += 3 {
		result.WriteString(sep)
		result.WriteString(str[i : i+3])
	}

	return result.String()
}

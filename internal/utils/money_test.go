package utils

import "testing"

func TestMoneyFromFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want Money
	}{
		{100, 10000},
		{1808.04, 180804},
		{0.004, 0},
		{0.016, 2},
		{50000, 5000000},
		{-12.5, -1250},
	}

	for _, tt := range tests {
		if got := FromFloat(tt.in); got != tt.want {
			t.Errorf("FromFloat(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{10000, "100.00"},
		{123456, "1234.56"},
		{-250, "-2.50"},
	}

	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("Money(%d).String() = %q, want %q", tt.m, got, tt.want)
		}
	}
}

func TestMoneyFormat(t *testing.T) {
	tests := []struct {
		m        Money
		currency string
		want     string
	}{
		{Rupees(1234567), "INR", "₹1,234,567.00"},
		{Paise(99), "INR", "₹0.99"},
		{Rupees(1000), "USD", "$1,000.00"},
		{Rupees(5), "XXX", "₹5.00"},
	}

	for _, tt := range tests {
		if got := tt.m.Format(tt.currency); got != tt.want {
			t.Errorf("Format(%s) = %q, want %q", tt.currency, got, tt.want)
		}
	}
}

func TestMoneyMulFloat(t *testing.T) {
	amount := Rupees(1000)
	if got := amount.MulFloat(0.015); got != Rupees(15) {
		t.Errorf("MulFloat(0.015) = %s, want 15.00", got)
	}
	if got := Paise(333).MulFloat(0.5); got != Paise(167) {
		t.Errorf("MulFloat rounding = %d, want 167", got)
	}
}

func TestMoneyClamp(t *testing.T) {
	lo, hi := Rupees(100), Rupees(50000)
	if got := Rupees(5).Clamp(lo, hi); got != lo {
		t.Errorf("Clamp below = %s", got)
	}
	if got := Rupees(90000).Clamp(lo, hi); got != hi {
		t.Errorf("Clamp above = %s", got)
	}
	if got := Rupees(2000).Clamp(lo, hi); got != Rupees(2000) {
		t.Errorf("Clamp inside = %s", got)
	}
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("1234.5")
	if err != nil {
		t.Fatalf("ParseMoney: %v", err)
	}
	if m != Paise(123450) {
		t.Errorf("ParseMoney = %d, want 123450", m)
	}

	if _, err := ParseMoney("abc"); err == nil {
		t.Error("expected error for non-numeric input")
	}
}

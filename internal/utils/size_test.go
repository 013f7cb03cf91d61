package utils

import "testing"

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0.00B"},
		{512, "512.00B"},
		{1024, "1.00KB"},
		{1536, "1.50KB"},
		{5 * 1024 * 1024, "5.00MB"},
		{3 * 1024 * 1024 * 1024, "3.00GB"},
		{2 * 1024 * 1024 * 1024 * 1024, "2.00TB"},
	}

	for _, tt := range tests {
		if got := FormatFileSize(tt.bytes); got != tt.want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatCount(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		15000:   "15,000",
		1234567: "1,234,567",
		-45000:  "-45,000",
	}
	for n, want := range tests {
		if got := FormatCount(n); got != want {
			t.Errorf("FormatCount(%d) = %q, want %q", n, got, want)
		}
	}
}

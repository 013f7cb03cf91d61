package utils

import "fmt"

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with two decimals and no space,
// e.g. "5.43MB". This form is embedded in output folder names.
func FormatFileSize(bytes int64) string {
	size := float64(bytes)
	for _, unit := range sizeUnits {
		if size < 1024 {
			return fmt.Sprintf("%.2f%s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.2fTB", size)
}

// FormatCount renders n with comma thousands separators, e.g. "15,000"
func FormatCount(n int) string {
	if n < 0 {
		return "-" + formatWithSeparator(int64(-n), ",")
	}
	return formatWithSeparator(int64(n), ",")
}

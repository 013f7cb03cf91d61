package generator

import (
	"fmt"
	"time"
)

// TransactionID returns TXN_<YYYYMMDD>_<seq>. The date prefix keeps
// sequences from different days disjoint.
func TransactionID(day time.Time, seq int) string {
	return fmt.Sprintf("TXN_%s_%06d", day.Format("20060102"), seq)
}

// CustomerID returns USER_<n> zero-padded to four digits
func CustomerID(n int) string {
	return fmt.Sprintf("USER_%04d", n)
}

// MerchantID returns MERCH_<n> zero-padded to four digits
func MerchantID(n int) string {
	return fmt.Sprintf("MERCH_%04d", n)
}

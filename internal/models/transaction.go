package models

import (
	"fmt"
	"time"

	"github.com/willfong/incremental-datagen/internal/utils"
)

// TransactionStatus represents the outcome reported by the gateway
type TransactionStatus string

const (
	StatusSuccessful TransactionStatus = "Successful"
	StatusFailed     TransactionStatus = "Failed"
	StatusPending    TransactionStatus = "Pending"
)

// AllStatuses lists statuses in report order
var AllStatuses = []TransactionStatus{StatusSuccessful, StatusFailed, StatusPending}

// DefectClass is the ground-truth label of the defect injected into a record.
// It is never serialized.
type DefectClass string

const (
	DefectNone           DefectClass = "clean"
	DefectLateArriving   DefectClass = "late_arriving"
	DefectNullUpdatedAt  DefectClass = "null_updated_at"
	DefectMerchantUpdate DefectClass = "merchant_update"
	DefectTimezoneSkew   DefectClass = "timezone_skew"
)

// InjectedDefects lists the defect classes in the order buckets are emitted
var InjectedDefects = []DefectClass{
	DefectLateArriving,
	DefectNullUpdatedAt,
	DefectMerchantUpdate,
	DefectTimezoneSkew,
}

// PaymentTransaction is one row of a day file
type PaymentTransaction struct {
	TransactionID        string
	CustomerID           string
	TransactionTimestamp time.Time
	MerchantID           string
	MerchantName         string
	ProductCategory      string
	ProductName          string
	Amount               utils.Money
	FeeAmount            utils.Money
	CashbackAmount       utils.Money
	LoyaltyPoints        int64
	PaymentMethod        string
	Status               TransactionStatus
	DeviceType           string
	LocationType         string
	Currency             string
	UpdatedAt            *time.Time // nil when the source never sent an update time

	Defect DefectClass
}

// Columns is the exact header of every day file, in order
var Columns = []string{
	"transaction_id",
	"customer_id",
	"transaction_timestamp",
	"merchant_id",
	"merchant_name",
	"product_category",
	"product_name",
	"amount",
	"fee_amount",
	"cashback_amount",
	"loyalty_points",
	"payment_method",
	"transaction_status",
	"device_type",
	"location_type",
	"currency",
	"updated_at",
}

// DayTable is the full set of records filed under one simulated day
type DayTable struct {
	Day     int
	Date    time.Time
	Records []PaymentTransaction
}

// FileBase returns the file name without extension for this day
func (d DayTable) FileBase() string {
	return DayFileBase(d.Day)
}

// CountDefect returns how many records carry the given ground-truth tag
func (d DayTable) CountDefect(class DefectClass) int {
	n := 0
	for i := range d.Records {
		if d.Records[i].Defect == class {
			n++
		}
	}
	return n
}

// DayFileBase returns "dayN_transactions"
func DayFileBase(day int) string {
	return fmt.Sprintf("day%d_transactions", day)
}

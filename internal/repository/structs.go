package repository

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrObjectNotFound = errors.New("not found")
	// ErrAlreadyConsumed is returned when a consume statement touches fewer
	// rows than requested because some were already invalid.
	ErrAlreadyConsumed = errors.New("unit already consumed")
	ErrDuplicate       = errors.New("duplicate")
)

type Donor struct {
	ID               int64           `db:"id"`
	NationalID       string          `db:"national_id"`
	Name             string          `db:"name"`
	Phone            string          `db:"phone"`
	BirthDate        time.Time       `db:"birth_date"`
	Gender           string          `db:"gender"`
	Weight           decimal.Decimal `db:"weight"`
	BloodType        string          `db:"blood_type"`
	ManuallyEnabled  bool            `db:"manually_enabled"`
	LastDonationDate *time.Time      `db:"last_donation_date"`
	BankID           int64           `db:"bank_id"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

type DonationUnit struct {
	ID                int64      `db:"id"`
	CollectionDate    time.Time  `db:"collection_date"`
	Component         string     `db:"component"`
	BloodType         string     `db:"blood_type"`
	Valid             bool       `db:"valid"`
	DonorID           int64      `db:"donor_id"`
	SiteID            *int64     `db:"site_id"`
	BankID            int64      `db:"bank_id"`
	ConsumedAt        *time.Time `db:"consumed_at"`
	ConsumedByOrderID *int64     `db:"consumed_by_order_id"`
}

type RequestOrder struct {
	ID         int64     `db:"id"`
	HospitalID int64     `db:"hospital_id"`
	BankID     int64     `db:"bank_id"`
	State      string    `db:"state"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type RequestLine struct {
	ID        int64  `db:"id"`
	OrderID   int64  `db:"order_id"`
	BankID    int64  `db:"bank_id"`
	BloodType string `db:"blood_type"`
	Component string `db:"component"`
	Quantity  int    `db:"quantity"`
}

type Hospital struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	BankID int64  `db:"bank_id"`
}

type CollectionSite struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	BankID int64  `db:"bank_id"`
}

type StockCount struct {
	BloodType string `db:"blood_type"`
	Component string `db:"component"`
	Available int    `db:"available"`
}

type DonorFilter struct {
	BankID      int64
	BloodType   string
	EnabledOnly bool
}

type StockFilter struct {
	BloodType string
	Component string
}

type Bank struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type HistoryEntry struct {
	ID        int64     `db:"id"`
	OrderID   int64     `db:"order_id"`
	State     string    `db:"state"`
	ChangedAt time.Time `db:"changed_at"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Donor struct {
	ID               int64           `json:"id"`
	NationalID       string          `json:"national_id"`
	Name             string          `json:"name"`
	Phone            string          `json:"phone,omitempty"`
	BirthDate        time.Time       `json:"birth_date"`
	Gender           Gender          `json:"gender"`
	Weight           decimal.Decimal `json:"weight"`
	BloodType        BloodType       `json:"blood_type"`
	ManuallyEnabled  bool            `json:"manually_enabled"`
	LastDonationDate *time.Time      `json:"last_donation_date,omitempty"`
	BankID           int64           `json:"bank_id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type DonationUnit struct {
	ID             int64      `json:"id"`
	CollectionDate time.Time  `json:"collection_date"`
	Component      Component  `json:"component"`
	BloodType      BloodType  `json:"blood_type"`
	Valid          bool       `json:"valid"`
	DonorID        int64      `json:"donor_id"`
	SiteID         *int64     `json:"site_id,omitempty"`
	BankID         int64      `json:"bank_id"`
	ConsumedAt     *time.Time `json:"consumed_at,omitempty"`
	ConsumedBy     *int64     `json:"consumed_by_order_id,omitempty"`
}

type RequestOrder struct {
	ID         int64         `json:"id"`
	HospitalID int64         `json:"hospital_id"`
	BankID     int64         `json:"bank_id"`
	State      OrderState    `json:"state"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	Lines      []RequestLine `json:"lines"`
}

type RequestLine struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	BankID    int64     `json:"bank_id"`
	BloodType BloodType `json:"blood_type"`
	Component Component `json:"component"`
	Quantity  int       `json:"quantity"`
}

// Bucket identifies the interchangeable stock a request line draws from.
type Bucket struct {
	BankID    int64
	BloodType BloodType
	Component Component
}

func (l RequestLine) Bucket() Bucket {
	return Bucket{BankID: l.BankID, BloodType: l.BloodType, Component: l.Component}
}

type DonorRegistration struct {
	NationalID string
	Name       string
	Phone      string
	BirthDate  time.Time
	Gender     Gender
	Weight     decimal.Decimal
	BloodType  BloodType
	BankID     int64
}

// DonorUpdate carries the mutable donor attributes; nil fields are left unchanged.
type DonorUpdate struct {
	Name   *string
	Phone  *string
	Gender *Gender
	Weight *decimal.Decimal
}

type DonorFilter struct {
	BankID      int64
	BloodType   *BloodType
	EnabledOnly bool
}

type LineRequest struct {
	BloodType BloodType `json:"blood_type"`
	Component Component `json:"component"`
	Quantity  int       `json:"quantity"`
}

type FulfillmentOutcome string

const (
	Fulfilled FulfillmentOutcome = "fulfilled"
	Pending   FulfillmentOutcome = "pending"
	NotActive FulfillmentOutcome = "not_active"
)

type StockLevel string

const (
	StockOK       StockLevel = "ok"
	StockLow      StockLevel = "low"
	StockCritical StockLevel = "critical"
)

type StockFilter struct {
	BloodType    *BloodType
	Component    *Component
	IncludeUnits bool
}

type StockBucket struct {
	BloodType BloodType  `json:"blood_type"`
	Component Component  `json:"component"`
	Available int        `json:"available"`
	Level     StockLevel `json:"level"`
}

type StockReport struct {
	BankID  int64          `json:"bank_id"`
	Total   int            `json:"total"`
	Buckets []StockBucket  `json:"buckets"`
	Units   []DonationUnit `json:"units,omitempty"`
}

type DonorHistory struct {
	Donor         Donor          `json:"donor"`
	Donations     []DonationUnit `json:"donations"`
	Eligible      bool           `json:"eligible"`
	DaysRemaining int            `json:"days_remaining"`
	Reasons       []string       `json:"reasons,omitempty"`
}

type OrderHistoryEntry struct {
	State     OrderState `json:"state"`
	ChangedAt time.Time  `json:"changed_at"`
}

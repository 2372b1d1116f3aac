package db

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request lifecycle states as seeded in request_states.
const (
	RequestStatePending         int16 = 1
	RequestStateApproved        int16 = 2
	RequestStateRejected        int16 = 3
	RequestStatePartialApproved int16 = 4
)

// Loan states as persisted in loans.state.
const (
	LoanStateLoaned          = "PRESTADO"
	LoanStateApproved        = "APROBADO"
	LoanStatePartialApproved = "APROBADO_PARCIAL"
	LoanStateRejected        = "RECHAZADO"
	LoanStateReturned        = "DEVUELTO"
)

type User struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string
	Role         string
	OfficeID     int64
	OfficeName   string
	Active       bool
	CreatedAt    time.Time
}

type Office struct {
	ID          int64
	Name        string
	Director    string
	Location    string
	Email       string
	IsPrincipal bool
	Active      bool
	CreatedAt   time.Time
}

type Material struct {
	ID                int64
	Name              string
	UnitValue         decimal.Decimal
	AvailableQuantity int32
	MinimumQuantity   int32
	OfficeID          int64
	ImagePath         *string
	CreatedBy         string
	Active            bool
	CreatedAt         time.Time
}

// TotalValue is derived, never stored.
func (m Material) TotalValue() decimal.Decimal {
	return m.UnitValue.Mul(decimal.NewFromInt32(m.AvailableQuantity))
}

type Request struct {
	ID               int64
	OfficeID         int64
	OfficeName       string
	MaterialID       int64
	MaterialName     string
	Quantity         int32
	OfficePercentage decimal.Decimal
	StateID          int16
	StateName        string
	RequesterName    string
	Observation      string
	TotalValue       decimal.Decimal
	OfficeValue      decimal.Decimal
	MainOfficeValue  decimal.Decimal
	UnitValue        decimal.Decimal
	AvailableStock   int32
	ResolvedBy       *int64
	ResolvedAt       *time.Time
	CreatedAt        time.Time
}

type RequestDelivery struct {
	ID          int64
	RequestID   int64
	Quantity    int32
	DeliveredBy string
	Note        string
	DeliveredAt time.Time
}

type Category struct {
	ID   int64
	Name string
}

type Supplier struct {
	ID   int64
	Name string
}

type CorporateItem struct {
	ID              int64
	Code            string
	Name            string
	Description     string
	CategoryID      int64
	CategoryName    string
	SupplierID      int64
	SupplierName    string
	UnitValue       decimal.Decimal
	Quantity        int32
	MinimumQuantity int32
	Location        string
	Assignable      bool
	ImagePath       *string
	CreatedBy       string
	Active          bool
	CreatedAt       time.Time
}

type CorporateAssignment struct {
	ID         int64
	ItemID     int64
	OfficeID   int64
	OfficeName string
	Quantity   int32
	AssignedBy string
	AssignedAt time.Time
}

type Element struct {
	ID                int64
	Name              string
	UnitValue         decimal.Decimal
	AvailableQuantity int32
	ImagePath         *string
	Active            bool
	CreatedAt         time.Time
}

type Loan struct {
	ID                 int64
	ElementID          int64
	ElementName        string
	RequesterID        int64
	RequesterName      string
	OfficeID           int64
	OfficeName         string
	Quantity           int32
	LoanedAt           time.Time
	ExpectedReturnDate time.Time
	ActualReturnDate   *time.Time
	State              string
	Event              string
	Observations       string
	LenderName         string
	ReturnedBy         *string
	Active             bool
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPending  OrderStatus = "pending"
	StatusPaid     OrderStatus = "paid"
	StatusShipped  OrderStatus = "shipped"
	StatusCanceled OrderStatus = "canceled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusCanceled:
		return true
	}
	return false
}

func (s OrderStatus) Display() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusPaid:
		return "Paid"
	case StatusShipped:
		return "Shipped"
	case StatusCanceled:
		return "Canceled"
	}
	return string(s)
}

type PaymentMethod string

const (
	PaymentCashApp PaymentMethod = "cashapp"
	PaymentZelle   PaymentMethod = "zelle"
	PaymentVenmo   PaymentMethod = "venmo"
	PaymentBitcoin PaymentMethod = "bitcoin"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCashApp, PaymentZelle, PaymentVenmo, PaymentBitcoin:
		return true
	}
	return false
}

// PriceOverride shadows a catalog product's base price and/or gives it a
// finite inventory. A nil Inventory means unlimited. A row with both fields
// nil is meaningless and gets deleted instead of stored.
type PriceOverride struct {
	Slug       string `gorm:"primaryKey;size:64;not null"`
	PriceCents *int64
	Inventory  *int64
	UpdatedAt  time.Time
}

type User struct {
	ID           string `gorm:"primaryKey;size:36;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:16;not null;default:customer"`
	Name         *string
	Phone        *string
	CreatedAt    time.Time
}

// CustomerAddress is the address book. A customer keeps at most one row
// flagged default; checkout overwrites it in place.
type CustomerAddress struct {
	ID        string `gorm:"primaryKey;size:36;not null"`
	UserID    string `gorm:"size:36;index;not null"`
	Name      *string
	Phone     *string
	Address1  string `gorm:"size:128;not null"`
	Address2  *string
	City      string `gorm:"size:64;not null"`
	State     string `gorm:"size:64;not null"`
	Zip       string `gorm:"size:16;not null"`
	Country   string `gorm:"size:2;not null;default:US"`
	IsDefault bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *CustomerAddress) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type Order struct {
	ID string `gorm:"primaryKey;size:36;not null"`

	CustomerID *string `gorm:"size:36;index"` // nil = guest checkout

	Email string `gorm:"size:255;not null"`
	Phone *string

	ShippingName     string `gorm:"size:128;not null"`
	ShippingAddress1 string `gorm:"size:128;not null"`
	ShippingAddress2 *string
	ShippingCity     string `gorm:"size:64;not null"`
	ShippingState    string `gorm:"size:64;not null"`
	ShippingZip      string `gorm:"size:16;not null"`
	ShippingCountry  string `gorm:"size:2;not null;default:US"`

	PaymentMethod PaymentMethod `gorm:"size:16;not null"`
	Status        OrderStatus   `gorm:"size:16;index;not null;default:pending"`

	SubtotalCents int64 `gorm:"not null"`
	TotalCents    int64 `gorm:"not null"`

	MailService    *string `gorm:"size:64"`
	TrackingNumber *string `gorm:"size:128"`
	ShippedAt      *time.Time

	// Independent audit timestamps, one per notification category. Set only
	// after the transport confirms a send, so a failed send stays retryable.
	ReceiptEmailSentAt             *time.Time
	PaymentInstructionsEmailSentAt *time.Time
	StatusEmailSentAt              *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem snapshots product identity and the price actually charged at
// commit time. Immutable once written.
type OrderItem struct {
	ID      string `gorm:"primaryKey;size:36;not null"`
	OrderID string `gorm:"size:36;index;not null"`

	ProductSlug   string `gorm:"size:64;not null"`
	ProductName   string `gorm:"size:128;not null"`
	ProductAmount string `gorm:"size:32;not null"`

	Qty            int64 `gorm:"not null"`
	UnitPriceCents int64 `gorm:"not null"`
	LineTotalCents int64 `gorm:"not null"`

	CreatedAt time.Time
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

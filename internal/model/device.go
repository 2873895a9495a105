package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Device status constants
const (
	StatusInStock  = "IN_STOCK"
	StatusSold     = "SOLD"
	StatusReserved = "RESERVED"
)

// Device condition constants
const (
	ConditionNew  = "NEW"
	ConditionUsed = "USED"
)

// ValidStatus reports whether s is one of the known device statuses.
func ValidStatus(s string) bool {
	return s == StatusInStock || s == StatusSold || s == StatusReserved
}

// ValidCondition reports whether c is a known device condition.
func ValidCondition(c string) bool {
	return c == ConditionNew || c == ConditionUsed
}

// Note is a single annotation attached to a device. Notes are append-only.
type Note struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Device represents one physical unit in inventory: a purchased phone or tablet
// tracked from buy-in through sale. Deletion is a hard delete, so there is no
// gorm.DeletedAt column here.
type Device struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"order_number"` // OTK-NNNNNN, assigned once

	// Identity
	Brand     string `gorm:"type:varchar(100);not null;index" json:"brand"`
	Model     string `gorm:"type:varchar(100);not null;index" json:"model"`
	Color     string `gorm:"type:varchar(50)" json:"color"`
	StorageGB string `gorm:"type:varchar(50)" json:"storage_gb"` // free-text capacity label
	IMEI      string `gorm:"type:varchar(100);index" json:"imei"`

	Condition string `gorm:"type:varchar(10);not null" json:"condition"`       // NEW, USED
	Status    string `gorm:"type:varchar(20);not null;index" json:"status"`    // IN_STOCK, SOLD, RESERVED

	// Financials
	PurchasePrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"purchase_price"`
	AdditionalCost  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"additional_cost"`
	ActualSalePrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"actual_sale_price"`
	MarginAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"margin_amount"`
	MarginPercent   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"margin_percent"`

	PurchaseDate time.Time `gorm:"type:date;index" json:"purchase_date"`

	// Sourcing. Employee fields hold display names, not foreign keys; the
	// employee delete guard compares against these by value.
	SellerName     string `gorm:"type:varchar(255)" json:"seller_name"`
	SellerIDNumber string `gorm:"type:varchar(50)" json:"seller_id_number"`
	SellerAddress  string `gorm:"type:varchar(255)" json:"seller_address"`
	PurchasedBy    string `gorm:"type:varchar(255)" json:"purchased_by"`
	TestedBy       string `gorm:"type:varchar(255)" json:"tested_by"`
	SoldBy         string `gorm:"type:varchar(255)" json:"sold_by"`

	// Storefront linkage
	ForWeb            bool   `gorm:"default:false" json:"for_web"`
	ExternalProductID string `gorm:"type:varchar(50);index" json:"external_product_id"`

	Warranty        bool       `gorm:"default:false" json:"warranty"`
	WarrantyEndDate *time.Time `gorm:"type:date" json:"warranty_end_date"`

	Notes []Note `gorm:"serializer:json" json:"notes"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	// UpdatedAt doubles as the record timestamp the statistics use to bucket
	// sold devices, so re-editing a sold device moves it between periods.
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// OrderSequence is the singleton counter backing order number issuance.
// It is only ever mutated under a row lock inside a transaction.
type OrderSequence struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LastIssuedNumber int64     `gorm:"not null;default:0" json:"last_issued_number"`
	UpdatedAt        time.Time `json:"updated_at"`
}

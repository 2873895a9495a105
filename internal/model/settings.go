package model

import (
	"time"

	"github.com/google/uuid"
)

// ReceiptSettings holds the purchase-receipt boilerplate shown on printed
// buyback receipts. Singleton row, defaulted on first access.
type ReceiptSettings struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyProfile holds the shop's own identity printed on receipts.
// Singleton row.
type CompanyProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Address   string    `gorm:"type:varchar(255)" json:"address"`
	TaxID     string    `gorm:"type:varchar(50)" json:"tax_id"`
	Phone     string    `gorm:"type:varchar(50)" json:"phone"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StorefrontCredentials holds the e-commerce storefront connection used by the
// stock sync. The reference deployment validates the consumer key pair server
// side; BearerToken is only needed for the deployment variant that requires an
// Authorization header. Singleton row.
type StorefrontCredentials struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Endpoint       string    `gorm:"type:varchar(255)" json:"endpoint"`
	ConsumerKey    string    `gorm:"type:varchar(255)" json:"consumer_key"`
	ConsumerSecret string    `gorm:"type:varchar(255)" json:"consumer_secret"`
	BearerToken    string    `gorm:"type:varchar(255)" json:"bearer_token"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

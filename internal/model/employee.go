package model

import (
	"time"

	"github.com/google/uuid"
)

// Employee is a roster entry. Display name only; devices reference employees
// by name, and an employee cannot be deleted while any device still does.
type Employee struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

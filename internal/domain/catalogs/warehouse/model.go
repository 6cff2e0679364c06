// Package warehouse provides stock locations that receipt lines are booked into.
package warehouse

import (
	"time"

	"backoffice/internal/core/id"
)

// DefaultLocationName is created lazily, once per company, for lines without a location.
const DefaultLocationName = "Main Warehouse"

// Location is a named stock location. (CompanyID, Name) is unique.
type Location struct {
	ID        id.ID     `db:"id" json:"id"`
	CompanyID string    `db:"company_id" json:"companyId"`
	Name      string    `db:"name" json:"name"`
	IsDefault bool      `db:"is_default" json:"isDefault"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewDefaultLocation builds the default location row for a company.
func NewDefaultLocation(companyID string) *Location {
	return &Location{
		ID:        id.New(),
		CompanyID: companyID,
		Name:      DefaultLocationName,
		IsDefault: true,
		CreatedAt: time.Now().UTC(),
	}
}

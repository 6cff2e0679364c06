// Package taxrate provides the company-scoped rate to tax id mapping.
package taxrate

import (
	"github.com/shopspring/decimal"
)

// TaxRate maps a numeric percentage to a tax identifier.
type TaxRate struct {
	ID        string          `db:"id" json:"id"`
	CompanyID string          `db:"company_id" json:"companyId"`
	Name      string          `db:"name" json:"name"`
	Rate      decimal.Decimal `db:"rate" json:"rate"`
}

// Table is the loaded mapping of one company.
type Table []TaxRate

// IDForRate returns the first tax id whose rate is numerically equal to rate.
func (t Table) IDForRate(rate decimal.Decimal) (string, bool) {
	for _, tr := range t {
		if tr.Rate.Equal(rate) {
			return tr.ID, true
		}
	}
	return "", false
}

// RateForID returns the rate registered for a tax id.
func (t Table) RateForID(taxID string) (decimal.Decimal, bool) {
	for _, tr := range t {
		if tr.ID == taxID {
			return tr.Rate, true
		}
	}
	return decimal.Zero, false
}

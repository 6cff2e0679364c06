package goods_receipt

import (
	"backoffice/internal/core/apperror"
)

// ValidatePricing enforces the sale-price rules on every item before anything is written:
// sale price present and > 0, not above MRP when an MRP is given, and not below unit cost
// when a unit cost is given. A zero MRP or cost counts as not given.
// The first violation rejects the whole call.
func ValidatePricing(items []ItemInput) error {
	for i := range items {
		if err := validateItemPricing(i+1, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateItemPricing(lineNo int, it *ItemInput) error {
	if it.SalePrice == nil || !it.SalePrice.IsPositive() {
		return apperror.NewLineValidation(lineNo, "salePrice", "sale price must be greater than 0")
	}
	sale := *it.SalePrice
	if it.MRP != nil && it.MRP.IsPositive() && sale.GreaterThan(*it.MRP) {
		return apperror.NewLineValidation(lineNo, "salePrice", "sale price cannot exceed MRP").
			WithDetail("salePrice", sale.String()).
			WithDetail("mrp", it.MRP.String())
	}
	if it.UnitPrice != nil && it.UnitPrice.IsPositive() && sale.LessThan(*it.UnitPrice) {
		return apperror.NewLineValidation(lineNo, "salePrice", "sale price cannot be below unit cost").
			WithDetail("salePrice", sale.String()).
			WithDetail("unitPrice", it.UnitPrice.String())
	}
	return nil
}

package goods_receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
)

func TestValidatePricing(t *testing.T) {
	tests := []struct {
		name    string
		item    ItemInput
		wantErr string
	}{
		{"valid", ItemInput{SalePrice: decp("10"), MRP: decp("12"), UnitPrice: decp("8")}, ""},
		{"equal to mrp and cost", ItemInput{SalePrice: decp("10"), MRP: decp("10"), UnitPrice: decp("10")}, ""},
		{"zero mrp ignored", ItemInput{SalePrice: decp("10"), MRP: decp("0")}, ""},
		{"zero cost ignored", ItemInput{SalePrice: decp("10"), UnitPrice: decp("0")}, ""},
		{"missing sale price", ItemInput{}, "sale price must be greater than 0"},
		{"zero sale price", ItemInput{SalePrice: decp("0")}, "sale price must be greater than 0"},
		{"above mrp", ItemInput{SalePrice: decp("13"), MRP: decp("12")}, "cannot exceed MRP"},
		{"below cost", ItemInput{SalePrice: decp("7"), UnitPrice: decp("8")}, "below unit cost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePricing([]ItemInput{tt.item})
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCreateInput_Validate(t *testing.T) {
	valid := func() CreateInput {
		return CreateInput{
			SupplierID: id.New(),
			Items:      []ItemInput{{ProductID: id.New(), QtyReceived: dec("1")}},
		}
	}

	require.NoError(t, func() error { in := valid(); return in.Validate() }())

	tests := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{"no supplier", func(in *CreateInput) { in.SupplierID = id.Nil() }, "supplierId"},
		{"no items", func(in *CreateInput) { in.Items = nil }, "items"},
		{"no product", func(in *CreateInput) { in.Items[0].ProductID = id.Nil() }, "productId"},
		{"negative qty", func(in *CreateInput) { in.Items[0].QtyReceived = dec("-1") }, "qtyReceived"},
		{"nothing received", func(in *CreateInput) { in.Items[0].QtyReceived = dec("0") }, "qtyReceived"},
		{"negative price", func(in *CreateInput) { in.Items[0].UnitPrice = decp("-1") }, "unitPrice"},
		{"zero factor", func(in *CreateInput) { in.Items[0].ConversionFactor = decp("0") }, "conversionFactor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			err := in.Validate()
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}

func TestCreateInput_Validate_FreeOnlyLine(t *testing.T) {
	in := CreateInput{
		SupplierID: id.New(),
		Items:      []ItemInput{{ProductID: id.New(), QtyReceived: dec("0"), FreeQty: decp("3")}},
	}
	assert.NoError(t, in.Validate())
}

func TestPricingRules(t *testing.T) {
	rules, err := CompilePricingRules("hasMrp ; !hasUnitCost || salePrice >= unitCost * 1.1")
	require.NoError(t, err)
	assert.Equal(t, 2, rules.Len())

	assert.NoError(t, rules.Check([]ItemInput{{SalePrice: decp("12"), MRP: decp("20"), UnitPrice: decp("10")}}))

	err = rules.Check([]ItemInput{
		{SalePrice: decp("11"), MRP: decp("20")},
		{SalePrice: decp("10.5"), MRP: decp("20"), UnitPrice: decp("10")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "salePrice >= unitCost * 1.1")
}

func TestCompilePricingRules_Errors(t *testing.T) {
	empty, err := CompilePricingRules("  ;  ")
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
	assert.NoError(t, empty.Check([]ItemInput{{}}))

	_, err = CompilePricingRules("salePrice + 1")
	assert.Error(t, err)

	_, err = CompilePricingRules("unknownVar > 1")
	assert.Error(t, err)
}

package goods_receipt

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/types"
)

// CostingInput is the per-line input of the UOM costing calculation.
type CostingInput struct {
	BilledQty        decimal.Decimal
	FreeQty          decimal.Decimal
	PurchaseUOM      string
	ConversionFactor decimal.Decimal // declared, 1 when not supplied
	UnitCost         decimal.Decimal
	SalePrice        decimal.Decimal
}

// Costing is the result of the calculation.
type Costing struct {
	TotalQty         decimal.Decimal // billed + free, purchase UOM
	EffectiveFactor  decimal.Decimal
	BaseQty          decimal.Decimal // stock quantity in base units
	AvgCostPerBase   decimal.Decimal // landed cost per base unit
	SalePricePerBase decimal.Decimal
}

// Calculator converts purchase-unit quantities into base-unit stock and cost.
// It holds no state besides configuration.
type Calculator struct {
	// StripFactor is the base units per strip assumed when a "STRIP" UOM carries no pack size.
	StripFactor decimal.Decimal
}

// NewCalculator returns a calculator using stripFactor for bare STRIP units.
func NewCalculator(stripFactor decimal.Decimal) Calculator {
	return Calculator{StripFactor: stripFactor}
}

// trivialUOMs denote the base unit itself.
var trivialUOMs = map[string]bool{
	"":      true,
	"UNIT":  true,
	"UNITS": true,
	"PC":    true,
	"PCS":   true,
	"NOS":   true,
	"EA":    true,
	"EACH":  true,
}

// packSizePatterns are tried in order; the first capture group is the pack size.
var packSizePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z]+[-_ ]?(\d+)$`), // PACK-10, BOX24, CARTON 12
	regexp.MustCompile(`^(\d+)\s*'?S$`),       // 15'S, 10S
	regexp.MustCompile(`X\s*(\d+)`),           // X12, 1X10, 10 x 10
}

var stripUOMs = map[string]bool{"STRIP": true, "STRIPS": true}

// ResolveFactor returns the effective conversion factor of a purchase UOM:
//  1. the declared factor when it is not 1, or when the UOM is the base unit;
//  2. otherwise a pack size parsed from the UOM string;
//  3. otherwise StripFactor for a bare STRIP;
//  4. otherwise the declared factor.
func (c Calculator) ResolveFactor(purchaseUOM string, declared decimal.Decimal) decimal.Decimal {
	uom := strings.ToUpper(strings.TrimSpace(purchaseUOM))
	one := decimal.NewFromInt(1)

	if !declared.Equal(one) || trivialUOMs[uom] {
		return declared
	}
	if n, ok := parsePackSize(uom); ok {
		return n
	}
	if stripUOMs[uom] && c.StripFactor.IsPositive() {
		return c.StripFactor
	}
	return declared
}

func parsePackSize(uom string) (decimal.Decimal, bool) {
	for _, re := range packSizePatterns {
		m := re.FindStringSubmatch(uom)
		if len(m) < 2 {
			continue
		}
		n, err := decimal.NewFromString(m[1])
		if err != nil || !n.IsPositive() {
			continue
		}
		return n, true
	}
	return decimal.Zero, false
}

// Compute derives base quantity, landed cost per base unit and sale price per base unit.
func (c Calculator) Compute(in CostingInput) Costing {
	declared := in.ConversionFactor
	if !declared.IsPositive() {
		declared = decimal.NewFromInt(1)
	}
	factor := c.ResolveFactor(in.PurchaseUOM, declared)

	total := in.BilledQty.Add(in.FreeQty)
	base := total.Mul(factor)

	avg := decimal.Zero
	if in.BilledQty.IsPositive() && base.IsPositive() {
		avg = types.RoundCost(in.BilledQty.Mul(in.UnitCost).Div(base))
	}

	salePerBase := in.SalePrice
	if factor.GreaterThan(decimal.NewFromInt(1)) {
		salePerBase = types.RoundCost(in.SalePrice.Div(factor))
	}

	return Costing{
		TotalQty:         total,
		EffectiveFactor:  factor,
		BaseQty:          base,
		AvgCostPerBase:   avg,
		SalePricePerBase: salePerBase,
	}
}

// costingInputFor maps an intake item onto the calculator input.
func costingInputFor(it *ItemInput) CostingInput {
	return CostingInput{
		BilledQty:        it.QtyReceived,
		FreeQty:          it.Free(),
		PurchaseUOM:      it.PurchaseUOM,
		ConversionFactor: it.Factor(),
		UnitCost:         it.UnitCost(),
		SalePrice:        types.OrZero(it.SalePrice),
	}
}

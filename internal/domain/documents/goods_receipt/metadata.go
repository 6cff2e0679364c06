package goods_receipt

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/types"
)

// Attachment is the optional document scan kept on the receipt header.
// Data holds the payload as the client sent it (usually a data URL or base64).
type Attachment struct {
	Name        string `json:"name,omitempty" jsonschema:"description=Original file name"`
	ContentType string `json:"content_type,omitempty"`
	Handle      string `json:"handle,omitempty" jsonschema:"description=External storage handle when the file lives outside the row"`
	Data        string `json:"data,omitempty"`
	Size        int    `json:"size,omitempty"`
	Digest      string `json:"digest,omitempty" jsonschema:"description=BLAKE2b-256 of Data, hex"`
	Stripped    bool   `json:"stripped,omitempty" jsonschema:"description=Data was replaced by a placeholder in this response"`
}

// ReceiptMetadata is the receipt header's JSONB bag.
type ReceiptMetadata struct {
	Reference  string      `json:"reference,omitempty" jsonschema:"description=Supplier invoice or delivery reference"`
	Notes      string      `json:"notes,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Scan implements sql.Scanner.
func (m *ReceiptMetadata) Scan(src any) error {
	return entity.ScanJSONB(src, m)
}

// Value implements driver.Valuer.
func (m ReceiptMetadata) Value() (driver.Value, error) {
	return entity.JSONBValue(m)
}

// Validate checks the header bag before it is written.
func (m ReceiptMetadata) Validate() error {
	if len(m.Reference) > 128 {
		return apperror.NewValidation("reference is too long").WithDetail("field", "reference")
	}
	if m.Attachment != nil && m.Attachment.Data == "" && m.Attachment.Handle == "" && !m.Attachment.Stripped {
		return apperror.NewValidation("attachment must carry data or a storage handle").
			WithDetail("field", "attachment")
	}
	return nil
}

// LineTax is the resolved tax of a line.
type LineTax struct {
	ID     string          `json:"id,omitempty"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// LineMetadata is the receipt line's JSONB bag.
// Tax is always written nested; rows written before that used flat
// tax_id/tax_rate/tax_amount keys, which UnmarshalJSON still reads.
type LineMetadata struct {
	BatchNo          string           `json:"batch_no,omitempty"`
	Expiry           string           `json:"expiry,omitempty" jsonschema:"description=YYYY-MM-DD"`
	MRP              *decimal.Decimal `json:"mrp,omitempty"`
	SalePrice        *decimal.Decimal `json:"sale_price,omitempty"`
	MarginPct        *decimal.Decimal `json:"margin_pct,omitempty"`
	MarkupPct        *decimal.Decimal `json:"markup_pct,omitempty"`
	PricingStrategy  string           `json:"pricing_strategy,omitempty"`
	MRPDiscountPct   *decimal.Decimal `json:"mrp_discount_pct,omitempty"`
	Tax              *LineTax         `json:"tax,omitempty"`
	HSN              string           `json:"hsn,omitempty"`
	Packing          string           `json:"packing,omitempty"`
	PurchaseUOM      string           `json:"purchase_uom,omitempty"`
	BaseUOM          string           `json:"base_uom,omitempty"`
	ConversionFactor *decimal.Decimal `json:"conversion_factor,omitempty"`
	SalePricePerUnit *decimal.Decimal `json:"sale_price_per_unit,omitempty"`
	DiscountPct      *decimal.Decimal `json:"discount_pct,omitempty"`
	DiscountAmt      *decimal.Decimal `json:"discount_amt,omitempty"`
	SchemeDiscount   *decimal.Decimal `json:"scheme_discount,omitempty"`
	FreeQty          *decimal.Decimal `json:"free_qty,omitempty"`

	// Derived at intake.
	EffectiveFactor *decimal.Decimal `json:"effective_factor,omitempty"`
	BaseQty         *decimal.Decimal `json:"base_qty,omitempty"`
	AvgCostPerBase  *decimal.Decimal `json:"avg_cost_per_base,omitempty"`
}

// lineDecimalKeys are the numeric keys of a line bag, including the legacy flat tax keys.
var lineDecimalKeys = []string{
	"mrp", "sale_price", "margin_pct", "markup_pct", "mrp_discount_pct",
	"conversion_factor", "sale_price_per_unit", "discount_pct", "discount_amt",
	"scheme_discount", "free_qty", "effective_factor", "base_qty", "avg_cost_per_base",
	"tax_rate", "tax_amount",
}

// normalizeLineNumbers rewrites numeric keys of a stored line bag into canonical
// decimal strings and drops the ones that hold "", null or garbage, so older rows
// stay readable.
func normalizeLineNumbers(data []byte) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return data, nil
	}

	for _, key := range lineDecimalKeys {
		looseDecimalField(fields, key)
	}

	if raw, ok := fields["tax_id"]; ok {
		var taxID string
		if json.Unmarshal(raw, &taxID) != nil {
			if n, err := strconv.ParseFloat(string(raw), 64); err == nil {
				fields["tax_id"] = json.RawMessage(strconv.Quote(strconv.FormatFloat(n, 'f', -1, 64)))
			} else {
				delete(fields, "tax_id")
			}
		}
	}

	if raw, ok := fields["tax"]; ok {
		var tax map[string]json.RawMessage
		if json.Unmarshal(raw, &tax) != nil || tax == nil {
			delete(fields, "tax")
		} else {
			looseDecimalField(tax, "rate")
			looseDecimalField(tax, "amount")
			b, err := json.Marshal(tax)
			if err != nil {
				return nil, err
			}
			fields["tax"] = b
		}
	}
	return json.Marshal(fields)
}

func looseDecimalField(fields map[string]json.RawMessage, key string) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var l types.LooseDecimal
	if json.Unmarshal(raw, &l) != nil || l.Get() == nil {
		delete(fields, key)
		return
	}
	fields[key] = json.RawMessage(strconv.Quote(l.Get().String()))
}

// UnmarshalJSON accepts both the nested tax object and the legacy flat keys.
// Numeric fields holding "" or other non-numbers read as absent.
func (m *LineMetadata) UnmarshalJSON(data []byte) error {
	data, err := normalizeLineNumbers(data)
	if err != nil {
		return fmt.Errorf("decode line metadata: %w", err)
	}

	type plain LineMetadata
	var raw struct {
		plain
		LegacyTaxID     *string          `json:"tax_id"`
		LegacyTaxRate   *decimal.Decimal `json:"tax_rate"`
		LegacyTaxAmount *decimal.Decimal `json:"tax_amount"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode line metadata: %w", err)
	}
	*m = LineMetadata(raw.plain)
	if m.Tax == nil && (raw.LegacyTaxID != nil || raw.LegacyTaxRate != nil || raw.LegacyTaxAmount != nil) {
		tax := &LineTax{Rate: decimal.Zero, Amount: decimal.Zero}
		if raw.LegacyTaxID != nil {
			tax.ID = *raw.LegacyTaxID
		}
		if raw.LegacyTaxRate != nil {
			tax.Rate = *raw.LegacyTaxRate
		}
		if raw.LegacyTaxAmount != nil {
			tax.Amount = *raw.LegacyTaxAmount
		}
		m.Tax = tax
	}
	return nil
}

// Scan implements sql.Scanner.
func (m *LineMetadata) Scan(src any) error {
	return entity.ScanJSONB(src, m)
}

// Value implements driver.Valuer.
func (m LineMetadata) Value() (driver.Value, error) {
	return entity.JSONBValue(m)
}

// Discounts is discount amount plus scheme discount.
func (m LineMetadata) Discounts() decimal.Decimal {
	total := decimal.Zero
	if m.DiscountAmt != nil {
		total = total.Add(*m.DiscountAmt)
	}
	if m.SchemeDiscount != nil {
		total = total.Add(*m.SchemeDiscount)
	}
	return total
}

// Validate checks the line bag before it is written. lineNo is 1-based.
func (m LineMetadata) Validate(lineNo int) error {
	nonNegative := map[string]*decimal.Decimal{
		"mrp":            m.MRP,
		"discountPct":    m.DiscountPct,
		"discountAmt":    m.DiscountAmt,
		"schemeDiscount": m.SchemeDiscount,
		"freeQty":        m.FreeQty,
		"mrpDiscountPct": m.MRPDiscountPct,
	}
	for _, field := range []string{"mrp", "discountPct", "discountAmt", "schemeDiscount", "freeQty", "mrpDiscountPct"} {
		if v := nonNegative[field]; v != nil && v.IsNegative() {
			return apperror.NewLineValidation(lineNo, field, field+" cannot be negative")
		}
	}
	if m.ConversionFactor != nil && !m.ConversionFactor.IsPositive() {
		return apperror.NewLineValidation(lineNo, "conversionFactor", "conversion factor must be greater than 0")
	}
	if m.Tax != nil {
		if m.Tax.Rate.IsNegative() {
			return apperror.NewLineValidation(lineNo, "taxRate", "tax rate cannot be negative")
		}
		if m.Tax.Amount.IsNegative() {
			return apperror.NewLineValidation(lineNo, "taxAmount", "tax amount cannot be negative")
		}
	}
	return nil
}

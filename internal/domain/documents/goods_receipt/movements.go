package goods_receipt

import (
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/id"
	"backoffice/internal/domain/registers/stock"
)

// stockMovement is the register entry of a received line, in base units.
func stockMovement(receipt *GoodsReceipt, line *Line, baseQty decimal.Decimal) stock.Movement {
	return stock.Movement{
		ID:           id.New(),
		CompanyID:    receipt.CompanyID,
		RecorderType: EntityType,
		RecorderID:   receipt.ID,
		LineNo:       line.LineNo,
		RecordType:   stock.RecordTypeReceipt,
		ProductID:    line.ProductID,
		BatchID:      line.BatchID,
		LocationID:   line.LocationID,
		Quantity:     baseQty,
		Period:       receipt.Date,
		CreatedAt:    time.Now().UTC(),
	}
}

package main

import (
	"backoffice/internal/domain/documents/goods_receipt"
	"backoffice/internal/metadata"
)

// setupMetadataRegistry publishes the schemas of the document metadata bags.
func setupMetadataRegistry() *metadata.Registry {
	reg := metadata.NewRegistry()
	reg.Register("goods-receipt", "Goods receipt", goods_receipt.ReceiptMetadata{}, goods_receipt.LineMetadata{})
	return reg
}

package goods_receipt

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// AttachmentPlaceholder replaces stripped attachment data in responses.
const AttachmentPlaceholder = "[attachment omitted]"

// Sanitizer strips attachment payloads larger than Limit bytes from receipts
// handed back to callers. The stored receipt is never modified.
type Sanitizer struct {
	Limit int
}

// NewSanitizer creates a sanitizer with the given inline limit in bytes.
func NewSanitizer(limit int) Sanitizer {
	return Sanitizer{Limit: limit}
}

// Receipt returns a shallow copy of doc whose attachment data is replaced by a
// placeholder when it exceeds the limit. Lines are shared with doc.
func (s Sanitizer) Receipt(doc *GoodsReceipt) *GoodsReceipt {
	if doc == nil {
		return nil
	}
	out := *doc
	out.Metadata.Attachment = s.Attachment(doc.Metadata.Attachment)
	return &out
}

// Attachment returns a sanitized copy of a, or a itself when nothing needs stripping.
func (s Sanitizer) Attachment(a *Attachment) *Attachment {
	if a == nil || a.Stripped || len(a.Data) <= s.Limit {
		return a
	}
	c := *a
	c.Size = len(a.Data)
	c.Digest = Digest(a.Data)
	c.Data = AttachmentPlaceholder
	c.Stripped = true
	return &c
}

// Digest is the hex BLAKE2b-256 of data.
func Digest(data string) string {
	sum := blake2b.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// String describes an attachment without its payload, for logs.
func (a *Attachment) String() string {
	if a == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s (%s, %d bytes)", a.Name, a.ContentType, max(a.Size, len(a.Data)))
}

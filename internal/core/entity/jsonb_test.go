package entity

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

func TestScanJSONB(t *testing.T) {
	var s sample
	require.NoError(t, ScanJSONB([]byte(`{"name":"x","amount":12.3456789012345678}`), &s))
	assert.Equal(t, "x", s.Name)
	assert.Equal(t, "12.3456789012345678", s.Amount.String())

	var untouched = sample{Name: "keep"}
	require.NoError(t, ScanJSONB(nil, &untouched))
	require.NoError(t, ScanJSONB("null", &untouched))
	assert.Equal(t, "keep", untouched.Name)

	assert.Error(t, ScanJSONB(42, &s))
	assert.Error(t, ScanJSONB([]byte(`{"name":`), &s))
}

func TestJSONBValue(t *testing.T) {
	v, err := JSONBValue(sample{Name: "a", Amount: decimal.RequireFromString("1.5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a","amount":"1.5"}`, string(v.([]byte)))
}

func TestDocumentValidate(t *testing.T) {
	doc := NewDocument("", time.Time{}, "received")
	err := doc.Validate(context.Background())
	require.Error(t, err)

	doc = NewDocument("c1", time.Time{}, "received")
	require.NoError(t, doc.Validate(context.Background()))
	assert.False(t, doc.Date.IsZero())
}

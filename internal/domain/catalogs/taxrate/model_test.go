package taxrate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTable_IDForRate_NumericEquality(t *testing.T) {
	table := Table{
		{ID: "gst5", Rate: decimal.RequireFromString("5.00")},
		{ID: "gst12", Rate: decimal.RequireFromString("12")},
	}

	got, ok := table.IDForRate(decimal.RequireFromString("5"))
	assert.True(t, ok)
	assert.Equal(t, "gst5", got)

	got, ok = table.IDForRate(decimal.RequireFromString("12.000"))
	assert.True(t, ok)
	assert.Equal(t, "gst12", got)

	_, ok = table.IDForRate(decimal.NewFromInt(18))
	assert.False(t, ok)

	rate, ok := table.RateForID("gst12")
	assert.True(t, ok)
	assert.Equal(t, "12", rate.String())
}

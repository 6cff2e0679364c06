package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineValidation_CarriesLineAndField(t *testing.T) {
	err := NewLineValidation(3, "salePrice", "sale price must be greater than 0")

	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, "line 3: sale price must be greater than 0", err.Message)
	assert.Equal(t, 3, err.Details["lineNo"])
	assert.Equal(t, "salePrice", err.Details["field"])
}

func TestAsAppError_ThroughWrapping(t *testing.T) {
	base := NewDuplicateReceipt("INV-77", "GRN-2026-0004")
	wrapped := fmt.Errorf("create goods receipt: %w", base)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeDuplicateReceipt, appErr.Code)
	assert.Equal(t, http.StatusConflict, GetHTTPStatus(wrapped))
	assert.True(t, HasCode(wrapped, CodeDuplicateReceipt))
	assert.False(t, IsNotFound(wrapped))
}

func TestTransactionError_KeepsCause(t *testing.T) {
	cause := NewNotFound("product", "p-1")
	err := NewTransaction(cause)

	assert.Equal(t, CodeTransaction, err.Code)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Message, "product not found")
}

func TestGetHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
}

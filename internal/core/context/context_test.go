package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserContext_HasPermission(t *testing.T) {
	clerk := &UserContext{Permissions: []string{"goods_receipt:read", "purchase_order:*"}}

	assert.True(t, clerk.HasPermission("goods_receipt:read"))
	assert.False(t, clerk.HasPermission("goods_receipt:create"))
	assert.True(t, clerk.HasPermission("purchase_order:read"))
	assert.True(t, (&UserContext{IsAdmin: true}).HasPermission("goods_receipt:update"))

	var none *UserContext
	assert.False(t, none.HasPermission("goods_receipt:read"))
}

func TestTrace_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	ctx = WithTrace(ctx, Trace{TraceID: "t1", RequestID: "r1"})
	tr, ok := TraceFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "r1", GetRequestID(ctx))
	assert.Equal(t, []any{"trace_id", "t1", "request_id", "r1"}, tr.LogFields())

	tr.SpanID = "s1"
	assert.Equal(t, []any{"trace_id", "t1", "request_id", "r1", "span_id", "s1"}, tr.LogFields())
}

func TestUser_Accessors(t *testing.T) {
	ctx := WithUser(context.Background(), &UserContext{UserID: "u1", CompanyID: "c1"})
	assert.Equal(t, "u1", GetUserID(ctx))
	assert.Equal(t, "c1", GetCompanyID(ctx))
	assert.Empty(t, GetCompanyID(context.Background()))
}

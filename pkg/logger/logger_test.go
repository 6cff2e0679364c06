package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "backoffice/internal/core/context"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{zap.New(core).Sugar()}, logs
}

func TestFromContext_ScopesDocumentAndCaller(t *testing.T) {
	l, logs := observed()

	ctx := WithLogger(context.Background(), l)
	ctx = appctx.WithTrace(ctx, appctx.Trace{TraceID: "t1", RequestID: "r1"})
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "u1", CompanyID: "c1"})
	ctx = WithDocument(ctx, "goods_receipt", "doc-1", "GRN-2026-0001")

	Info(ctx, "goods receipt created", "lines", 2)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "r1", fields["request_id"])
	assert.Equal(t, "c1", fields["company_id"])
	assert.Equal(t, "goods_receipt", fields["doc_type"])
	assert.Equal(t, "doc-1", fields["doc_id"])
	assert.Equal(t, "GRN-2026-0001", fields["doc_number"])
	assert.EqualValues(t, 2, fields["lines"])
}

func TestWithFields_DoesNotLeakIntoParent(t *testing.T) {
	l, logs := observed()

	parent := WithFields(WithLogger(context.Background(), l), "batch", "B1")
	child := WithFields(parent, "line", 3)

	Warn(parent, "parent")
	Warn(child, "child")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.NotContains(t, entries[0].ContextMap(), "line")
	assert.Equal(t, "B1", entries[1].ContextMap()["batch"])
	assert.EqualValues(t, 3, entries[1].ContextMap()["line"])
}

func TestWithDocument_OmitsEmptyNumber(t *testing.T) {
	l, logs := observed()

	ctx := WithDocument(WithLogger(context.Background(), l), "purchase_invoice", "inv-1", "")
	Debug(ctx, "draft")

	require.Equal(t, 1, logs.Len())
	assert.NotContains(t, logs.All()[0].ContextMap(), "doc_number")
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "chatty", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
}

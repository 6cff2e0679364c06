package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/core/apperror"
	appctx "backoffice/internal/core/context"
	"backoffice/internal/infrastructure/storage/postgres"
	"backoffice/pkg/logger"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"
const maxIdempotencyBodyBytes = 4 << 20 // 4 MiB, inline attachments included

// IdempotencyStore persists idempotency keys and the responses they produced.
type IdempotencyStore interface {
	AcquireKey(ctx context.Context, key, companyID, userID, operation, requestHash string) (*postgres.IdempotencyReplay, error)
	FinishKey(ctx context.Context, key, companyID string, statusCode int, contentType string, body []byte) error
}

// Idempotency middleware protects against duplicate requests.
// A request carrying X-Idempotency-Key runs at most once per company; repeats replay
// the stored response. Must run after Auth.
func Idempotency(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		user := appctx.GetUser(ctx)
		if user == nil || user.CompanyID == "" {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		limited := io.LimitReader(c.Request.Body, maxIdempotencyBodyBytes+1)
		body, _ := io.ReadAll(limited)
		if len(body) > maxIdempotencyBodyBytes {
			appErr := apperror.NewValidation("request body too large for idempotency")
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			_ = c.Error(appErr.WithDetail("max_bytes", maxIdempotencyBodyBytes))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		hash := sha256.Sum256(body)
		requestHash := hex.EncodeToString(hash[:])

		operation := c.Request.Method + " " + c.FullPath()

		replay, err := store.AcquireKey(ctx, key, user.CompanyID, user.UserID, operation, requestHash)
		if err != nil {
			if _, ok := apperror.AsAppError(err); !ok {
				err = apperror.NewInternal(err).WithDetail("component", "idempotency")
			}
			_ = c.Error(err)
			c.Abort()
			return
		}
		if replay != nil {
			c.Header("Idempotent-Replayed", "true")
			c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			c.Abort()
			return
		}

		rec := &responseRecorder{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		// Render pending errors here so the stored body matches what the client receives.
		writeError(c)

		contentType := rec.Header().Get("Content-Type")
		if err := store.FinishKey(ctx, key, user.CompanyID, rec.Status(), contentType, rec.body.Bytes()); err != nil {
			logger.Warn(ctx, "failed to finish idempotency key", "key", key, "error", err)
		}
	}
}

// responseRecorder tees the response body into a buffer.
type responseRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

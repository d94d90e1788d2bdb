package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// ResponseStore is the subset of the go-redis client used for replay storage.
type ResponseStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// replay is a stored mutation response.
type replay struct {
	Status      int             `json:"status"`
	ContentType string          `json:"content_type"`
	Body        json.RawMessage `json:"body"`
}

// capturingWriter tees the response body into buf.
type capturingWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response when a POST is retried
// with the same Idempotency-Key. Keys are scoped to the requester and route,
// so a key reused by another user or on another endpoint does not collide.
// A nil store disables the middleware.
func IdempotencyMiddleware(store ResponseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		if store == nil || key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		storeKey := "idempotency:" + UserID(c) + ":" + c.Request.URL.Path + ":" + key

		prior, err := loadReplay(ctx, store, storeKey)
		switch {
		case err == nil:
			c.Header("Idempotent-Replayed", "true")
			c.Data(prior.Status, prior.ContentType, prior.Body)
			c.Abort()
			return
		case !errors.Is(err, redis.Nil):
			slog.WarnContext(ctx, "idempotency lookup failed", "error", err)
		}

		w := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		// 5xx responses stay retryable.
		status := w.Status()
		if status < 200 || status >= 500 {
			return
		}
		saved := replay{
			Status:      status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.buf.Bytes(),
		}
		if err := saveReplay(ctx, store, storeKey, saved); err != nil {
			slog.WarnContext(ctx, "idempotency store failed", "error", err)
		}
	}
}

func loadReplay(ctx context.Context, store ResponseStore, key string) (replay, error) {
	var r replay
	data, err := store.Get(ctx, key).Bytes()
	if err != nil {
		return r, err
	}
	err = json.Unmarshal(data, &r)
	return r, err
}

func saveReplay(ctx context.Context, store ResponseStore, key string, r replay) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, data, idempotencyTTL).Err()
}

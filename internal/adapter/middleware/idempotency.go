package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// claimTTL bounds how long a crashed handler can hold a key before
	// clients may retry the same request id.
	claimTTL = 60 * time.Second
	// skewTolerance is the accepted drift between Ax-Request-At and
	// server time, both compared in UTC.
	skewTolerance = 10 * time.Minute
)

// captureWriter tees the handler's response so the finished bytes can
// be stored for replay.
type captureWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// requestMeta validates the three Ax-* headers every mutating call
// must carry. A non-empty msg means the request is rejected with 400.
func requestMeta(c echo.Context) (actor, reqID string, at time.Time, msg string) {
	h := c.Request().Header

	reqID = strings.TrimSpace(h.Get("Ax-Request-Id"))
	switch {
	case reqID == "":
		return "", "", time.Time{}, "missing Ax-Request-Id"
	case !validReqID(reqID):
		return "", "", time.Time{}, "invalid Ax-Request-Id format"
	}

	at, err := parseRequestAt(h.Get("Ax-Request-At"))
	if err != nil {
		return "", "", time.Time{}, err.Error()
	}
	now := time.Now().UTC()
	if at.Before(now.Add(-skewTolerance)) || at.After(now.Add(skewTolerance)) {
		return "", "", time.Time{}, "Ax-Request-At too skewed"
	}

	actor = strings.TrimSpace(h.Get("Ax-Actor-Id"))
	switch {
	case actor == "":
		return "", "", time.Time{}, "missing Ax-Actor-Id"
	case !reHex32.MatchString(actor):
		return "", "", time.Time{}, "invalid Ax-Actor-Id"
	}
	return actor, reqID, at, ""
}

// IdempotencyMiddleware makes every mutating endpoint safe to retry.
// The first request under a (route, actor, Ax-Request-Id) key claims it
// via SetNX and runs; a retry with the same body replays the stored
// response, a retry with a different body is rejected, and a retry
// racing the original gets a conflict.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration, log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			actor, reqID, reqAt, badMsg := requestMeta(c)
			if badMsg != "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": badMsg})
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
				req.Body = io.NopCloser(bytes.NewReader(body))
			}
			hash := digest(body)

			key := storeKey(req.Method, c.Path(), actor, reqID)
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()

			ok, err := claim(ctx, rdb, key, record{
				Pending:   true,
				BodyHash:  hash,
				RequestID: reqID,
				RequestAt: reqAt.UnixMilli(),
				StoredAt:  time.Now().UTC(),
			})
			if err != nil {
				log.WithError(err).WithField("key", key).Warn("idempotency claim failed")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !ok {
				prev, lerr := lookup(ctx, rdb, key)
				if lerr != nil {
					log.WithError(lerr).WithField("key", key).Warn("idempotency lookup failed")
				}
				switch {
				case prev.BodyHash != "" && prev.BodyHash != hash:
					return c.JSON(http.StatusConflict, map[string]string{"error": "Ax-Request-Id reused with different body"})
				case !prev.Pending && prev.Status != 0 && len(prev.Response) > 0:
					return c.Blob(prev.Status, echo.MIMEApplicationJSON, prev.Response)
				default:
					return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			if err := next(c); err != nil {
				c.Error(err)
			}

			// The request context may already be done here; the final
			// write must still land or the claim blocks retries until
			// it expires.
			final := record{
				Status:    cw.status,
				Response:  cw.buf.Bytes(),
				BodyHash:  hash,
				RequestID: reqID,
				RequestAt: reqAt.UnixMilli(),
				StoredAt:  time.Now().UTC(),
			}
			if serr := store(context.Background(), rdb, key, final, ttl); serr != nil {
				log.WithError(serr).WithField("key", key).Warn("idempotency store failed")
			}
			return nil
		}
	}
}

package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// record is the stored state behind one idempotency key: a pending
// claim while the request runs, then the final response for replays.
type record struct {
	Pending   bool      `json:"pending"`
	Status    int       `json:"status"`
	Response  []byte    `json:"response"`
	BodyHash  string    `json:"body_hash"`
	RequestID string    `json:"request_id"`
	RequestAt int64     `json:"request_at_ms"`
	StoredAt  time.Time `json:"stored_at"`
}

func digest(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

// storeKey scopes a request id to the route and the acting user, so
// the same client id on different endpoints never collides.
func storeKey(method, route, actorID, requestID string) string {
	return "idemp:v1:" + strings.ToLower(method) + ":" + route + ":" + actorID + ":" + requestID
}

var (
	reUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// validReqID accepts lowercase UUIDs or bare 32-hex ids.
func validReqID(id string) bool {
	id = strings.ToLower(strings.TrimSpace(id))
	return reUUID.MatchString(id) || reHex32.MatchString(id)
}

// parseRequestAt reads the Ax-Request-At header. Accepted forms are
// epoch seconds, epoch milliseconds, and RFC3339/RFC3339Nano carrying
// an explicit zone. Naive local timestamps are rejected: without a
// zone the skew check would be meaningless.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing Ax-Request-At")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New("Ax-Request-At must be epoch (s/ms) or RFC3339 with timezone")
}

// claim writes the pending record iff the key is free. A false return
// means another request already owns the key.
func claim(ctx context.Context, rdb *redis.Client, key string, rec record) (bool, error) {
	payload, _ := json.Marshal(rec)
	return rdb.SetNX(ctx, key, payload, claimTTL).Result()
}

func lookup(ctx context.Context, rdb *redis.Client, key string) (record, error) {
	var rec record
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return rec, err
	}
	_ = json.Unmarshal(v, &rec)
	return rec, nil
}

// store overwrites the claim with the finished response.
func store(ctx context.Context, rdb *redis.Client, key string, rec record, ttl time.Duration) error {
	payload, _ := json.Marshal(rec)
	return rdb.Set(ctx, key, payload, ttl).Err()
}

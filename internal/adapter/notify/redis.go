package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Budget for the push itself; settlement paths never wait longer.
const pushTimeout = 2 * time.Second

type envelope struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	EmittedAt time.Time `json:"emitted_at"`
}

// RedisQueue pushes events onto a Redis list consumed by the
// notification workers. Callers treat delivery as fire-and-forget:
// the returned error is for logging only and must never abort the
// mutation that produced the event.
type RedisQueue struct {
	rdb *redis.Client
	key string
}

func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key}
}

func (q *RedisQueue) Queue(ctx context.Context, eventType string, payload any) error {
	body, err := json.Marshal(envelope{
		Type:      eventType,
		Payload:   payload,
		EmittedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	pctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()
	return q.rdb.LPush(pctx, q.key, body).Err()
}

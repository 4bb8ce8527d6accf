package notify

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	domainNotify "coinlend-backend/internal/domain/notify"
)

func TestRedisQueue_PushesEnvelope(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	q := NewRedisQueue(rdb, "notify:events")

	loanID := strings.Repeat("c", 32)
	if err := q.Queue(context.Background(), domainNotify.EventLoanRepaid, map[string]any{"loan_id": loanID}); err != nil {
		t.Fatalf("queue: %v", err)
	}

	vals, err := mr.List("notify:events")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(vals) != 1 {
		t.Fatalf("expected 1 queued event, got %d", len(vals))
	}

	var env envelope
	if err := json.Unmarshal([]byte(vals[0]), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Type != domainNotify.EventLoanRepaid {
		t.Fatalf("expected type %q, got %q", domainNotify.EventLoanRepaid, env.Type)
	}
	payload, ok := env.Payload.(map[string]any)
	if !ok {
		t.Fatalf("expected map payload, got %T", env.Payload)
	}
	if payload["loan_id"] != loanID {
		t.Fatalf("expected loan_id %q, got %v", loanID, payload["loan_id"])
	}
	if env.EmittedAt.IsZero() {
		t.Fatal("expected emitted_at to be stamped")
	}
}

func TestRedisQueue_PreservesOrder(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	q := NewRedisQueue(rdb, "notify:events")

	ctx := context.Background()
	for _, typ := range []string{domainNotify.EventLoanMatched, domainNotify.EventLoanDisbursed} {
		if err := q.Queue(ctx, typ, nil); err != nil {
			t.Fatalf("queue %s: %v", typ, err)
		}
	}

	// LPUSH prepends, so a BRPOP consumer drains in emit order.
	vals, err := mr.List("notify:events")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(vals) != 2 {
		t.Fatalf("expected 2 queued events, got %d", len(vals))
	}
	var first, second envelope
	if err := json.Unmarshal([]byte(vals[1]), &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := json.Unmarshal([]byte(vals[0]), &second); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if first.Type != domainNotify.EventLoanMatched || second.Type != domainNotify.EventLoanDisbursed {
		t.Fatalf("unexpected order: %q then %q", first.Type, second.Type)
	}
}

func TestRedisQueue_StoreUnavailable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	q := NewRedisQueue(rdb, "notify:events")
	if err := q.Queue(context.Background(), domainNotify.EventLoanRepaid, nil); err == nil {
		t.Fatal("expected error when the store is down")
	}
}

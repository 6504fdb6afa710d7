// Package queue is the job queue (C9): a Redis-backed FIFO per pipeline
// kind, with a high-priority tier ahead of the normal one. Messages carry
// only the job/render id — the redelivery-safe idempotency guard lives in
// the db package's CAS transitions, not here.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/duskreel/clipper/internal/models"
)

type Priority int

const (
	PriorityNormal Priority = 0
	PriorityHigh   Priority = 1
)

// Message is a queue entry: which pipeline to run, and for which Job (kind
// analyze) or Render (kind render) id.
type Message struct {
	ID        uuid.UUID      `json:"id"`
	Kind      models.JobKind `json:"kind"`
	CreatedAt time.Time      `json:"created_at"`
}

type Queue struct {
	client *redis.Client
}

func New(redisURL string) (*Queue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Queue{client: client}, nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func keyFor(kind models.JobKind, priority Priority) string {
	tier := "normal"
	if priority == PriorityHigh {
		tier = "high"
	}
	return fmt.Sprintf("queue:%s:%s", kind, tier)
}

// Enqueue pushes a message onto the given kind's priority-tiered list.
func (q *Queue) Enqueue(ctx context.Context, kind models.JobKind, id uuid.UUID, priority Priority) error {
	msg := Message{ID: id, Kind: kind, CreatedAt: time.Now()}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal queue message: %w", err)
	}
	return q.client.RPush(ctx, keyFor(kind, priority), data).Err()
}

// Dequeue blocks up to timeout for the next message of the given kind.
// BLPOP checks its key list in order, so the high-priority list always
// drains before the normal one without any separate polling loop.
func (q *Queue) Dequeue(ctx context.Context, kind models.JobKind, timeout time.Duration) (*Message, error) {
	keys := []string{keyFor(kind, PriorityHigh), keyFor(kind, PriorityNormal)}
	result, err := q.client.BLPop(ctx, timeout, keys...).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue: %w", err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected redis response")
	}

	var msg Message
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queue message: %w", err)
	}
	return &msg, nil
}

func (q *Queue) GetQueueLength(ctx context.Context, kind models.JobKind, priority Priority) (int64, error) {
	return q.client.LLen(ctx, keyFor(kind, priority)).Result()
}

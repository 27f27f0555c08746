package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Task is a queued background job, serialized as JSON onto a Redis list.
type Task struct {
	Kind       string         `json:"kind"`
	Payload    map[string]any `json:"payload,omitempty"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
}

// Queue pushes background tasks onto a Redis list consumed by workers
// outside this process. Enqueue is fire-and-forget from the caller's view:
// the service layer logs failures instead of failing the request.
type Queue struct {
	rdb *goredis.Client
	key string
}

// NewQueue creates a queue over an already connected client.
func NewQueue(rdb *goredis.Client, key string) *Queue {
	return &Queue{rdb: rdb, key: key}
}

// EnqueueNotify is a convenience wrapper for notification tasks.
func (q *Queue) EnqueueNotify(ctx context.Context, kind string, payload map[string]any) error {
	return q.Enqueue(ctx, Task{Kind: kind, Payload: payload})
}

// Enqueue appends a task to the list.
func (q *Queue) Enqueue(ctx context.Context, task Task) error {
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = time.Now().UTC()
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	if err := q.rdb.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("enqueue task %s: %w", task.Kind, err)
	}
	return nil
}

// Len returns the number of tasks currently waiting in the queue.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.rdb.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}

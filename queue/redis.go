package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmpty is returned by Dequeue when no job arrived within the timeout.
var ErrEmpty = errors.New("queue: empty")

// Queue is a FIFO list in Redis: LPUSH to enqueue, BRPOP to dequeue.
type Queue struct {
	rdb redis.UniversalClient
	key string
}

func New(rdb redis.UniversalClient, key string) *Queue {
	return &Queue{rdb: rdb, key: key}
}

// Dial connects to redisURL (redis://host:port/db) and pings it.
func Dial(ctx context.Context, redisURL, key string) (*Queue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(rdb, key), nil
}

func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	payload, err := job.encode()
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, q.key, payload).Err()
}

// Dequeue blocks for up to timeout. Undecodable payloads are returned as
// errors and dropped from the list.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (Job, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return Job{}, ErrEmpty
	}
	if err != nil {
		return Job{}, err
	}
	// BRPOP replies with [key, value].
	if len(res) != 2 {
		return Job{}, fmt.Errorf("unexpected BRPOP reply of %d elements", len(res))
	}
	job, err := decode(res[1])
	if err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	return job, nil
}

func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}

func (q *Queue) Close() error {
	return q.rdb.Close()
}

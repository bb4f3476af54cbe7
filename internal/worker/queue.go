package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Really-Great-Tech/chareli-backend/internal/config"
)

// Handler processes one job payload. A returned error requeues the job until
// its attempt budget is spent (at-least-once semantics).
type Handler func(ctx context.Context, payload []byte) error

// Enqueuer is the producer side of the queue; services depend on this.
type Enqueuer interface {
	Enqueue(ctx context.Context, queue string, payload interface{}) error
}

type job struct {
	ID       string          `json:"id"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Queue is a Redis-list-backed job queue. Producers RPUSH JSON jobs; one
// worker goroutine per registered queue BLPOPs and dispatches.
type Queue struct {
	client      *redis.Client
	prefix      string
	block       time.Duration
	maxAttempts int
	logger      *zap.Logger

	mu       sync.Mutex
	handlers map[string]Handler
	wg       sync.WaitGroup
}

func NewQueue(client *redis.Client, cfg config.JobsConfig, logger *zap.Logger) *Queue {
	return &Queue{
		client:      client,
		prefix:      cfg.QueueKeyPrefix,
		block:       cfg.WorkerPollBlock,
		maxAttempts: cfg.MaxAttempts,
		logger:      logger,
		handlers:    make(map[string]Handler),
	}
}

func (q *Queue) key(queue string) string {
	return fmt.Sprintf("%s:%s", q.prefix, queue)
}

func (q *Queue) Enqueue(ctx context.Context, queue string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal job payload: %w", err)
	}
	data, err := json.Marshal(job{ID: uuid.New().String(), Payload: raw})
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return q.client.RPush(ctx, q.key(queue), data).Err()
}

// CreateWorker registers a handler for a queue name. Must be called before
// Start.
func (q *Queue) CreateWorker(queue string, handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[queue] = handler
}

// Start launches one consumer goroutine per registered queue. Consumers run
// until ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for queue, handler := range q.handlers {
		q.wg.Add(1)
		go q.consume(ctx, queue, handler)
	}
}

// Wait blocks until all consumers have drained after ctx cancellation.
func (q *Queue) Wait() { q.wg.Wait() }

func (q *Queue) consume(ctx context.Context, queue string, handler Handler) {
	defer q.wg.Done()
	key := q.key(queue)
	for {
		if ctx.Err() != nil {
			return
		}

		result, err := q.client.BLPop(ctx, q.block, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			q.logger.Error("queue pop failed", zap.String("queue", queue), zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		// BLPop returns [key, value].
		if len(result) != 2 {
			continue
		}

		var j job
		if err := json.Unmarshal([]byte(result[1]), &j); err != nil {
			q.logger.Error("dropping malformed job", zap.String("queue", queue), zap.Error(err))
			continue
		}

		if err := handler(ctx, j.Payload); err != nil {
			j.Attempts++
			q.logger.Error("job failed",
				zap.String("queue", queue),
				zap.String("job_id", j.ID),
				zap.Int("attempts", j.Attempts),
				zap.Error(err))
			if j.Attempts < q.maxAttempts {
				if data, merr := json.Marshal(j); merr == nil {
					if perr := q.client.RPush(ctx, key, data).Err(); perr != nil {
						q.logger.Error("requeue failed", zap.String("queue", queue), zap.Error(perr))
					}
				}
			} else {
				q.logger.Error("job dropped after max attempts",
					zap.String("queue", queue), zap.String("job_id", j.ID))
			}
		}
	}
}

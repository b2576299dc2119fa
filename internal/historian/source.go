// internal/historian/source.go
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/truthorlie/internal/models"
	"github.com/redis/go-redis/v9"
)

// ErrMalformed wraps queue payloads that are not valid event records.
var ErrMalformed = errors.New("malformed event record")

// Source yields queued event records. ok is false when nothing arrived within timeout.
type Source interface {
	Next(ctx context.Context, timeout time.Duration) (rec models.EventRecord, ok bool, err error)
}

// RedisSource pops records from a Redis list with BLPop.
type RedisSource struct {
	rdb   *redis.Client
	queue string
}

// NewRedisSource reads from the given list.
func NewRedisSource(rdb *redis.Client, queue string) *RedisSource {
	return &RedisSource{rdb: rdb, queue: queue}
}

// Next blocks up to timeout for the next record.
func (s *RedisSource) Next(ctx context.Context, timeout time.Duration) (models.EventRecord, bool, error) {
	res, err := s.rdb.BLPop(ctx, timeout, s.queue).Result()
	if errors.Is(err, redis.Nil) {
		return models.EventRecord{}, false, nil
	}
	if err != nil {
		return models.EventRecord{}, false, fmt.Errorf("BLPop %s: %w", s.queue, err)
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return models.EventRecord{}, false, nil
	}

	var rec models.EventRecord
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		return models.EventRecord{}, false, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := rec.Validate(); err != nil {
		return models.EventRecord{}, false, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return rec, true, nil
}

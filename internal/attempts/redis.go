package attempts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ensure RedisRecorder implements Recorder interface.
var _ Recorder = (*RedisRecorder)(nil)

// RedisRecorder keeps a rolling per-challenge attempt counter and the
// serialized last attempt, both expiring after the configured TTL.
type RedisRecorder struct {
	db  *redis.Client
	ttl time.Duration
}

type RedisRecorderConfig struct {
	RedisClient *redis.Client
	TTL         time.Duration
}

func NewRedisRecorder(config RedisRecorderConfig) *RedisRecorder {
	return &RedisRecorder{
		db:  config.RedisClient,
		ttl: config.TTL,
	}
}

func (r *RedisRecorder) Record(ctx context.Context, attempt Attempt) error {
	payload, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}

	countKey := "ctfbridge-attempts-count-" + attempt.ChallengeID
	lastKey := "ctfbridge-attempts-last-" + attempt.ChallengeID

	pipe := r.db.TxPipeline()
	pipe.Incr(ctx, countKey)
	pipe.Expire(ctx, countKey, r.ttl)
	pipe.Set(ctx, lastKey, payload, r.ttl)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}

	return nil
}

// Count returns the attempt counter for a challenge, 0 when none was recorded.
func (r *RedisRecorder) Count(ctx context.Context, challengeID string) (int64, error) {
	count, err := r.db.Get(ctx, "ctfbridge-attempts-count-"+challengeID).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, err
	}

	return count, nil
}

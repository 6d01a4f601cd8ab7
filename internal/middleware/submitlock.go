package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SubmitLocker serializes the in-flight submit of a single bill.
type SubmitLocker interface {
	TryLock(ctx context.Context, key string) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// RedisSubmitLocker backs the guard with SetNX; the TTL bounds a lock
// leaked by a crashed request.
type RedisSubmitLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSubmitLocker(client *redis.Client, ttl time.Duration) *RedisSubmitLocker {
	return &RedisSubmitLocker{client: client, ttl: ttl}
}

func (l *RedisSubmitLocker) TryLock(ctx context.Context, key string) (bool, error) {
	return l.client.SetNX(ctx, "bills:submit:"+key, "1", l.ttl).Result()
}

func (l *RedisSubmitLocker) Unlock(ctx context.Context, key string) error {
	return l.client.Del(ctx, "bills:submit:"+key).Err()
}

// SubmitLock guards the bill update phase against double-submit: a second
// request for the same bill while one is in flight is a local no-op (409),
// the lock releases when the phase settles.
func SubmitLock(locker SubmitLocker, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("id")
		if key == "" {
			c.Next()
			return
		}

		acquired, err := locker.TryLock(c.Request.Context(), key)
		if err != nil {
			log.Error().Err(err).Str("bill_id", key).Msg("submit lock failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Erreur 500"})
			return
		}
		if !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "submission_in_progress"})
			return
		}
		defer func() {
			if err := locker.Unlock(context.Background(), key); err != nil {
				log.Warn().Err(err).Str("bill_id", key).Msg("submit unlock failed")
			}
		}()

		c.Next()
	}
}

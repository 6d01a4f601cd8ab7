package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// PendingUploadsKey is the sorted set of upload markers whose update phase
// has not settled, scored by upload time. Each member carries the object
// key alongside the bill id: the draft row insert can fail after the
// upload, and the marker is then the only place the stored object's key
// survives.
const PendingUploadsKey = "receipts:pending"

const pendingMemberSep = "|"

// PendingMember encodes a marker member. Object keys are date-prefixed
// paths and never contain the separator.
func PendingMember(billID, objectKey string) string {
	return billID + pendingMemberSep + objectKey
}

// SplitPendingMember decodes a marker member back into bill id and object
// key. A member written without a key decodes with an empty key.
func SplitPendingMember(member string) (billID, objectKey string) {
	billID, objectKey, _ = strings.Cut(member, pendingMemberSep)
	return billID, objectKey
}

// RedisUploadTracker is the production UploadTracker.
type RedisUploadTracker struct {
	client *redis.Client
}

func NewRedisUploadTracker(client *redis.Client) *RedisUploadTracker {
	return &RedisUploadTracker{client: client}
}

func (t *RedisUploadTracker) MarkPending(ctx context.Context, billID string, objectKey string, at time.Time) error {
	return t.client.ZAdd(ctx, PendingUploadsKey, redis.Z{
		Score:  float64(at.Unix()),
		Member: PendingMember(billID, objectKey),
	}).Err()
}

func (t *RedisUploadTracker) ClearPending(ctx context.Context, billID string, objectKey string) error {
	return t.client.ZRem(ctx, PendingUploadsKey, PendingMember(billID, objectKey)).Err()
}

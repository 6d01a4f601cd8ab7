package tasks

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"billed/api/internal/models"
	"billed/api/internal/repository"
	"billed/api/internal/service"
)

// BillSource and ReceiptRemover are the store slices cleanup needs.
type BillSource interface {
	GetByID(ctx context.Context, id string) (models.Bill, error)
	Delete(ctx context.Context, id string) error
}

type ReceiptRemover interface {
	RemoveReceipt(ctx context.Context, objectKey string) error
}

// Processor handles receipt task messages. Its one real job is the
// compensation sweep: a bill whose upload phase succeeded but whose update
// phase never arrived keeps a pending marker; after the grace period the
// draft row and its stored object are reclaimed.
type Processor struct {
	cache       *redis.Client
	bills       BillSource
	store       ReceiptRemover
	gracePeriod time.Duration
	logger      zerolog.Logger
}

func NewProcessor(cache *redis.Client, bills BillSource, store ReceiptRemover, gracePeriod time.Duration, logger zerolog.Logger) *Processor {
	return &Processor{
		cache:       cache,
		bills:       bills,
		store:       store,
		gracePeriod: gracePeriod,
		logger:      logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	taskType, _ := msg.Values["type"].(string)

	switch taskType {
	case "receipts-cleanup":
		return p.sweepPending(ctx)
	default:
		p.logger.Warn().Str("type", taskType).Msg("unknown task type")
		return nil
	}
}

// sweepPending walks the pending-upload markers older than the grace
// period. A marker whose bill was since completed is simply dropped; a
// marker still pointing at an unfilled draft takes the draft row and the
// stored receipt with it; a marker with no row at all still names the
// stored object, which is removed before the marker goes.
func (p *Processor) sweepPending(ctx context.Context) error {
	cutoff := time.Now().Add(-p.gracePeriod).Unix()

	members, err := p.cache.ZRangeByScore(ctx, service.PendingUploadsKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(cutoff, 10),
	}).Result()
	if err != nil {
		return err
	}

	for _, member := range members {
		id, objectKey := service.SplitPendingMember(member)
		if err := p.reclaim(ctx, id, objectKey); err != nil {
			p.logger.Error().Err(err).Str("bill_id", id).Msg("reclaim failed")
			continue
		}
		if err := p.cache.ZRem(ctx, service.PendingUploadsKey, member).Err(); err != nil {
			p.logger.Error().Err(err).Str("bill_id", id).Msg("drop pending marker failed")
		}
	}

	if len(members) > 0 {
		p.logger.Info().Int("count", len(members)).Msg("pending receipt sweep done")
	}
	return nil
}

func (p *Processor) reclaim(ctx context.Context, id string, objectKey string) error {
	bill, err := p.bills.GetByID(ctx, id)
	if errors.Is(err, repository.ErrBillNotFound) {
		// The draft row insert failed after the upload settled; the
		// marker's object key is all that points at the stored file.
		if objectKey == "" {
			return nil
		}
		if err := p.store.RemoveReceipt(ctx, objectKey); err != nil {
			return err
		}
		p.logger.Info().
			Str("bill_id", id).
			Str("object_key", objectKey).
			Msg("rowless upload reclaimed")
		return nil
	}
	if err != nil {
		return err
	}

	if !isUnfilledDraft(bill) {
		// The update phase did land, the marker just was not cleared.
		return nil
	}

	if bill.ObjectKey != "" {
		if err := p.store.RemoveReceipt(ctx, bill.ObjectKey); err != nil {
			return err
		}
	}
	if err := p.bills.Delete(ctx, bill.ID); err != nil {
		return err
	}

	p.logger.Info().
		Str("bill_id", bill.ID).
		Str("object_key", bill.ObjectKey).
		Msg("orphaned draft reclaimed")
	return nil
}

// isUnfilledDraft reports whether the bill still looks like the row the
// upload phase created: no form fields ever arrived.
func isUnfilledDraft(bill models.Bill) bool {
	return bill.Type == "" && bill.Name == "" && bill.Date == "" && bill.Amount == ""
}

package service

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"billed/api/internal/ids"
	"billed/api/internal/models"
	"billed/api/internal/receipts"
	"billed/api/internal/security"
)

// ReceiptObjectStore is the upload side of the two-phase persist.
type ReceiptObjectStore interface {
	PutReceipt(ctx context.Context, objectKey string, data []byte, contentType string) (string, error)
}

// UploadTracker records uploads whose second phase has not settled yet, so
// the compensation worker can find orphans. The object key travels with
// the marker because the draft row may never materialize.
type UploadTracker interface {
	MarkPending(ctx context.Context, billID string, objectKey string, at time.Time) error
	ClearPending(ctx context.Context, billID string, objectKey string) error
}

// NewBillService drives the bill-creation workflow: client-side
// gatekeeping of the selected file, then the sequential upload and update
// phases against the stores.
type NewBillService struct {
	bills           BillStore
	store           ReceiptObjectStore
	tracker         UploadTracker
	signatureSecret string
	log             zerolog.Logger
}

func NewNewBillService(bills BillStore, store ReceiptObjectStore, tracker UploadTracker, signatureSecret string, log zerolog.Logger) *NewBillService {
	return &NewBillService{
		bills:           bills,
		store:           store,
		tracker:         tracker,
		signatureSecret: signatureSecret,
		log:             log,
	}
}

// DraftResult is what the upload phase hands back to the form: the key the
// update phase must target, and where the receipt now lives.
type DraftResult struct {
	Key      string
	FileURL  string
	FileName string
}

// CreateDraft is the first persist phase. The file name's extension is
// validated before anything touches the network; a rejected file is a
// local validation fault and the caller may retry with another file. On
// acceptance the bytes are stored unchanged, a draft bill row is created
// and a pending-upload marker is set for compensation.
func (s *NewBillService) CreateDraft(ctx context.Context, email string, fileName string, data []byte) (DraftResult, error) {
	if err := receipts.ValidateFileName(fileName); err != nil {
		return DraftResult{}, err
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	detected, err := receipts.DetectHead(head)
	if err != nil {
		return DraftResult{}, fmt.Errorf("fichier %q refusé : contenu non reconnu: %w", fileName, err)
	}

	key := ids.New()
	objectKey := buildObjectKey(key, fileName)

	fileURL, err := s.store.PutReceipt(ctx, objectKey, data, detected.MIME)
	if err != nil {
		return DraftResult{}, fmt.Errorf("upload receipt: %w", err)
	}

	if err := s.tracker.MarkPending(ctx, key, objectKey, time.Now()); err != nil {
		// Compensation is best effort; the upload itself succeeded.
		s.log.Warn().Err(err).Str("bill_id", key).Msg("mark pending upload failed")
	}

	draft := models.Bill{
		ID:        key,
		Email:     email,
		Pct:       20,
		FileURL:   fileURL,
		FileName:  fileName,
		ObjectKey: objectKey,
		Status:    models.BillStatusPending,
		Signature: security.SignResource(s.signatureSecret, key, objectKey),
	}

	if err := s.bills.Create(ctx, draft); err != nil {
		// The uploaded object is not rolled back; the pending marker
		// stays so the worker can reclaim it.
		return DraftResult{}, fmt.Errorf("create draft: %w", err)
	}

	return DraftResult{
		Key:      key,
		FileURL:  fileURL,
		FileName: fileName,
	}, nil
}

// SubmitInput carries the raw form field values. Amount is deliberately
// not validated here: a non-numeric value is passed through to the store
// as-is and only the display layer attempts to format it.
type SubmitInput struct {
	Type       string
	Name       string
	Amount     string
	Date       string
	VAT        string
	Pct        string
	Commentary string
}

// Submit is the second persist phase: it fills the draft identified by key
// with the form fields. It is only attempted after CreateDraft resolved;
// on failure the uploaded receipt is left in place (accepted partial
// effect) and the pending marker is kept for compensation.
func (s *NewBillService) Submit(ctx context.Context, key string, email string, input SubmitInput) (models.Bill, error) {
	draft, err := s.bills.GetByID(ctx, key)
	if err != nil {
		return models.Bill{}, categorize(err)
	}
	if draft.Email != email {
		return models.Bill{}, ErrForbidden
	}

	draft.Type = input.Type
	draft.Name = input.Name
	draft.Amount = strings.TrimSpace(input.Amount)
	draft.Date = input.Date
	draft.VAT = input.VAT
	draft.Pct = parsePct(input.Pct)
	draft.Commentary = input.Commentary
	draft.Status = models.BillStatusPending

	if err := s.bills.Update(ctx, draft); err != nil {
		return models.Bill{}, categorize(err)
	}

	if err := s.tracker.ClearPending(ctx, key, draft.ObjectKey); err != nil {
		s.log.Warn().Err(err).Str("bill_id", key).Msg("clear pending upload failed")
	}

	return draft, nil
}

// Post is the single-call creation path, used when file and fields need no
// separation.
func (s *NewBillService) Post(ctx context.Context, bill models.Bill) (models.Bill, error) {
	if bill.ID == "" {
		bill.ID = ids.New()
	}
	if bill.Status == "" {
		bill.Status = models.BillStatusPending
	}
	if bill.Pct == 0 {
		bill.Pct = 20
	}

	if err := s.bills.Create(ctx, bill); err != nil {
		return models.Bill{}, categorize(err)
	}
	return bill, nil
}

func parsePct(raw string) int {
	pct, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || pct <= 0 {
		return 20
	}
	return pct
}

func buildObjectKey(key string, fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	datePrefix := time.Now().UTC().Format("2006/01/02")
	return path.Join(datePrefix, fmt.Sprintf("%s.%s", key, ext))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"billed/api/internal/format"
	"billed/api/internal/models"
	"billed/api/internal/repository"
	"billed/api/internal/security"
)

// ErrForbidden marks a bill access outside the viewer's scope.
var ErrForbidden = errors.New("forbidden")

// BillStore is the remote bill store contract consumed by both workflow
// services.
type BillStore interface {
	Create(ctx context.Context, bill models.Bill) error
	Update(ctx context.Context, bill models.Bill) error
	Review(ctx context.Context, id string, status models.BillStatus, commentAdmin string) error
	GetByID(ctx context.Context, id string) (models.Bill, error)
	ListByEmail(ctx context.Context, email string) ([]models.Bill, error)
	List(ctx context.Context) ([]models.Bill, error)
	Delete(ctx context.Context, id string) error
}

type BillService struct {
	bills           BillStore
	signatureSecret string
	log             zerolog.Logger
}

// NewBillListService builds the bill-list service. A nil store is allowed:
// listing then resolves to an empty sequence instead of a fault.
func NewBillListService(bills BillStore, signatureSecret string, log zerolog.Logger) *BillService {
	return &BillService{
		bills:           bills,
		signatureSecret: signatureSecret,
		log:             log,
	}
}

// List returns the viewer's bills as DisplayBills, most recent date first.
// Employees see their own bills, Admins see everything. One malformed
// record degrades only itself: its raw fields are kept and the fault is
// logged, never raised.
func (s *BillService) List(ctx context.Context, viewer models.UserRecord) ([]models.DisplayBill, error) {
	if s.bills == nil {
		return []models.DisplayBill{}, nil
	}

	var (
		raw []models.Bill
		err error
	)
	if viewer.Type == models.UserRoleAdmin {
		raw, err = s.bills.List(ctx)
	} else {
		raw, err = s.bills.ListByEmail(ctx, viewer.Email)
	}
	if err != nil {
		return nil, categorize(err)
	}

	display := make([]models.DisplayBill, 0, len(raw))
	for _, bill := range raw {
		display = append(display, format.Bill(s.log, bill))
	}

	// Raw ISO dates compare lexicographically; ties keep retrieval order.
	sort.SliceStable(display, func(i, j int) bool {
		return display[i].RawDate > display[j].RawDate
	})

	return display, nil
}

// ReceiptURL resolves the receipt URL behind a list row's eye icon. It
// performs no mutation and is safe to call repeatedly. Employees may only
// open their own receipts.
func (s *BillService) ReceiptURL(ctx context.Context, id string, viewer models.UserRecord) (string, error) {
	if s.bills == nil {
		return "", categorize(repository.ErrBillNotFound)
	}

	bill, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return "", categorize(err)
	}

	if viewer.Type != models.UserRoleAdmin && bill.Email != viewer.Email {
		return "", ErrForbidden
	}

	if len(bill.Signature) > 0 &&
		!security.VerifyResource(s.signatureSecret, bill.Signature, bill.ID, bill.ObjectKey) {
		return "", fmt.Errorf("receipt signature mismatch for bill %s", bill.ID)
	}

	return bill.FileURL, nil
}

// Review applies the administrator's decision to a submitted bill.
func (s *BillService) Review(ctx context.Context, id string, status models.BillStatus, commentAdmin string) error {
	switch status {
	case models.BillStatusAccepted, models.BillStatusRefused, models.BillStatusPending:
	default:
		return fmt.Errorf("unknown status %q", status)
	}

	if err := s.bills.Review(ctx, id, status, commentAdmin); err != nil {
		return categorize(err)
	}
	return nil
}

// categorize converts a store failure into one of the two recognized
// user-facing categories. The message content is the contract: callers
// branch on the "404"/"500" substrings, anything else surfaces raw.
func categorize(err error) error {
	if errors.Is(err, repository.ErrBillNotFound) || isUndefinedTable(err) {
		return fmt.Errorf("Erreur 404: %w", err)
	}
	return fmt.Errorf("Erreur 500: %w", err)
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}

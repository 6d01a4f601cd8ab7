package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billed/api/internal/models"
	"billed/api/internal/security"
)

var (
	employee = models.UserRecord{Type: models.UserRoleEmployee, Email: "employee@billed.fr"}
	admin    = models.UserRecord{Type: models.UserRoleAdmin, Email: "admin@billed.fr"}
)

func billOn(id, email, date string) models.Bill {
	return models.Bill{
		ID:     id,
		Email:  email,
		Type:   models.ExpenseTransports,
		Name:   "trip " + id,
		Amount: "100",
		Date:   date,
		Status: models.BillStatusPending,
	}
}

func TestListOrdersMostRecentFirst(t *testing.T) {
	store := newFakeBillStore(
		billOn("a", employee.Email, "2001-01-01"),
		billOn("b", employee.Email, "2004-04-04"),
		billOn("c", employee.Email, "2003-03-03"),
	)
	svc := NewBillListService(store, "secret", zerolog.Nop())

	bills, err := svc.List(context.Background(), employee)
	require.NoError(t, err)
	require.Len(t, bills, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{bills[0].ID, bills[1].ID, bills[2].ID})
}

func TestListKeepsRetrievalOrderOnEqualDates(t *testing.T) {
	store := newFakeBillStore(
		billOn("first", employee.Email, "2002-02-02"),
		billOn("second", employee.Email, "2002-02-02"),
		billOn("third", employee.Email, "2002-02-02"),
	)
	svc := NewBillListService(store, "secret", zerolog.Nop())

	bills, err := svc.List(context.Background(), employee)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, []string{bills[0].ID, bills[1].ID, bills[2].ID})
}

func TestListScopesByRole(t *testing.T) {
	store := newFakeBillStore(
		billOn("mine", employee.Email, "2002-02-02"),
		billOn("other", "someone@billed.fr", "2003-03-03"),
	)
	svc := NewBillListService(store, "secret", zerolog.Nop())

	own, err := svc.List(context.Background(), employee)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "mine", own[0].ID)

	all, err := svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListWithoutStoreResolvesEmpty(t *testing.T) {
	svc := NewBillListService(nil, "secret", zerolog.Nop())

	bills, err := svc.List(context.Background(), employee)
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func TestListMalformedRecordKeepsRawFields(t *testing.T) {
	broken := billOn("x", employee.Email, "not-a-date")
	broken.Amount = "cent euros"
	store := newFakeBillStore(
		broken,
		billOn("ok", employee.Email, "2004-04-04"),
	)
	svc := NewBillListService(store, "secret", zerolog.Nop())

	bills, err := svc.List(context.Background(), employee)
	require.NoError(t, err)
	require.Len(t, bills, 2)

	// The intact record formats, the broken one surfaces raw. The broken
	// date still participates in ordering as plain text.
	byID := map[string]models.DisplayBill{bills[0].ID: bills[0], bills[1].ID: bills[1]}
	assert.Equal(t, "4 Avr. 04", byID["ok"].Date)
	assert.Equal(t, "not-a-date", byID["x"].Date)
	assert.Equal(t, "cent euros", byID["x"].Amount)
}

func TestListCategorizesStoreFailure(t *testing.T) {
	store := newFakeBillStore()
	store.listErr = errors.New("connection refused")
	svc := NewBillListService(store, "secret", zerolog.Nop())

	_, err := svc.List(context.Background(), employee)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Erreur 500")
}

func TestListCategorizesMissingTableAsNotFound(t *testing.T) {
	store := newFakeBillStore()
	store.listErr = &pgconn.PgError{Code: "42P01", Message: `relation "bills" does not exist`}
	svc := NewBillListService(store, "secret", zerolog.Nop())

	_, err := svc.List(context.Background(), employee)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Erreur 404")
}

func TestReceiptURLChecksOwnership(t *testing.T) {
	bill := billOn("b1", "someone@billed.fr", "2002-02-02")
	bill.FileURL = "https://storage.local/receipts/b1.png"
	store := newFakeBillStore(bill)
	svc := NewBillListService(store, "secret", zerolog.Nop())

	_, err := svc.ReceiptURL(context.Background(), "b1", employee)
	assert.ErrorIs(t, err, ErrForbidden)

	url, err := svc.ReceiptURL(context.Background(), "b1", admin)
	require.NoError(t, err)
	assert.Equal(t, bill.FileURL, url)
}

func TestReceiptURLIsRepeatable(t *testing.T) {
	bill := billOn("b1", employee.Email, "2002-02-02")
	bill.ObjectKey = "2002/02/02/b1.png"
	bill.FileURL = "https://storage.local/receipts/b1.png"
	bill.Signature = security.SignResource("secret", bill.ID, bill.ObjectKey)
	store := newFakeBillStore(bill)
	svc := NewBillListService(store, "secret", zerolog.Nop())

	first, err := svc.ReceiptURL(context.Background(), "b1", employee)
	require.NoError(t, err)
	second, err := svc.ReceiptURL(context.Background(), "b1", employee)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReceiptURLRejectsTamperedSignature(t *testing.T) {
	bill := billOn("b1", employee.Email, "2002-02-02")
	bill.ObjectKey = "2002/02/02/b1.png"
	bill.Signature = security.SignResource("other-secret", bill.ID, bill.ObjectKey)
	store := newFakeBillStore(bill)
	svc := NewBillListService(store, "secret", zerolog.Nop())

	_, err := svc.ReceiptURL(context.Background(), "b1", employee)
	assert.Error(t, err)
}

func TestReceiptURLMissingBillIsNotFound(t *testing.T) {
	svc := NewBillListService(newFakeBillStore(), "secret", zerolog.Nop())

	_, err := svc.ReceiptURL(context.Background(), "ghost", employee)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Erreur 404")
}

func TestReviewValidatesStatus(t *testing.T) {
	store := newFakeBillStore(billOn("b1", employee.Email, "2002-02-02"))
	svc := NewBillListService(store, "secret", zerolog.Nop())

	require.Error(t, svc.Review(context.Background(), "b1", "validated", ""))

	require.NoError(t, svc.Review(context.Background(), "b1", models.BillStatusAccepted, "ok"))
	assert.Equal(t, models.BillStatusAccepted, store.bills["b1"].Status)
	assert.Equal(t, "ok", store.bills["b1"].CommentAdmin)
}

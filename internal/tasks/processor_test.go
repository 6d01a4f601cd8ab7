package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billed/api/internal/models"
	"billed/api/internal/repository"
)

type fakeBillSource struct {
	bills   map[string]models.Bill
	deleted []string
}

func (f *fakeBillSource) GetByID(_ context.Context, id string) (models.Bill, error) {
	bill, ok := f.bills[id]
	if !ok {
		return models.Bill{}, repository.ErrBillNotFound
	}
	return bill, nil
}

func (f *fakeBillSource) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.bills, id)
	return nil
}

type fakeRemover struct {
	removed []string
}

func (f *fakeRemover) RemoveReceipt(_ context.Context, objectKey string) error {
	f.removed = append(f.removed, objectKey)
	return nil
}

func newTestProcessor(bills *fakeBillSource, store *fakeRemover) *Processor {
	return NewProcessor(nil, bills, store, 24*time.Hour, zerolog.Nop())
}

func TestReclaimRemovesObjectWhenRowNeverExisted(t *testing.T) {
	bills := &fakeBillSource{bills: map[string]models.Bill{}}
	store := &fakeRemover{}
	p := newTestProcessor(bills, store)

	err := p.reclaim(context.Background(), "ghost", "2024/01/01/ghost.png")
	require.NoError(t, err)

	// The upload settled but the draft insert failed: the marker's object
	// key is the only route to the stored file.
	assert.Equal(t, []string{"2024/01/01/ghost.png"}, store.removed)
	assert.Empty(t, bills.deleted)
}

func TestReclaimRowlessMarkerWithoutKeyIsNoop(t *testing.T) {
	bills := &fakeBillSource{bills: map[string]models.Bill{}}
	store := &fakeRemover{}
	p := newTestProcessor(bills, store)

	require.NoError(t, p.reclaim(context.Background(), "ghost", ""))
	assert.Empty(t, store.removed)
}

func TestReclaimRemovesUnfilledDraft(t *testing.T) {
	draft := models.Bill{
		ID:        "d1",
		Email:     "employee@billed.fr",
		ObjectKey: "2024/01/01/d1.png",
		FileURL:   "https://storage.local/receipts/d1.png",
		Status:    models.BillStatusPending,
	}
	bills := &fakeBillSource{bills: map[string]models.Bill{draft.ID: draft}}
	store := &fakeRemover{}
	p := newTestProcessor(bills, store)

	require.NoError(t, p.reclaim(context.Background(), "d1", draft.ObjectKey))

	assert.Equal(t, []string{draft.ObjectKey}, store.removed)
	assert.Equal(t, []string{"d1"}, bills.deleted)
}

func TestReclaimKeepsCompletedBill(t *testing.T) {
	bill := models.Bill{
		ID:        "b1",
		Email:     "employee@billed.fr",
		Type:      models.ExpenseTransports,
		Name:      "taxi",
		Amount:    "40",
		Date:      "2023-09-12",
		ObjectKey: "2024/01/01/b1.png",
		Status:    models.BillStatusPending,
	}
	bills := &fakeBillSource{bills: map[string]models.Bill{bill.ID: bill}}
	store := &fakeRemover{}
	p := newTestProcessor(bills, store)

	// A completed bill with a leftover marker loses only the marker.
	require.NoError(t, p.reclaim(context.Background(), "b1", bill.ObjectKey))

	assert.Empty(t, store.removed)
	assert.Empty(t, bills.deleted)
	assert.Contains(t, bills.bills, "b1")
}

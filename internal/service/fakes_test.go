package service

import (
	"context"
	"fmt"
	"time"

	"billed/api/internal/models"
	"billed/api/internal/repository"
)

// fakeBillStore keeps bills in insertion order so tests can assert what
// "retrieval order" means to the callers.
type fakeBillStore struct {
	bills map[string]models.Bill
	order []string
	calls []string

	createErr error
	updateErr error
	listErr   error
	getErr    error
}

func newFakeBillStore(seed ...models.Bill) *fakeBillStore {
	s := &fakeBillStore{bills: map[string]models.Bill{}}
	for _, b := range seed {
		s.bills[b.ID] = b
		s.order = append(s.order, b.ID)
	}
	return s
}

func (s *fakeBillStore) Create(_ context.Context, bill models.Bill) error {
	s.calls = append(s.calls, "create")
	if s.createErr != nil {
		return s.createErr
	}
	s.bills[bill.ID] = bill
	s.order = append(s.order, bill.ID)
	return nil
}

func (s *fakeBillStore) Update(_ context.Context, bill models.Bill) error {
	s.calls = append(s.calls, "update")
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.bills[bill.ID]; !ok {
		return repository.ErrBillNotFound
	}
	s.bills[bill.ID] = bill
	return nil
}

func (s *fakeBillStore) Review(_ context.Context, id string, status models.BillStatus, commentAdmin string) error {
	s.calls = append(s.calls, "review")
	bill, ok := s.bills[id]
	if !ok {
		return repository.ErrBillNotFound
	}
	bill.Status = status
	bill.CommentAdmin = commentAdmin
	s.bills[id] = bill
	return nil
}

func (s *fakeBillStore) GetByID(_ context.Context, id string) (models.Bill, error) {
	s.calls = append(s.calls, "get")
	if s.getErr != nil {
		return models.Bill{}, s.getErr
	}
	bill, ok := s.bills[id]
	if !ok {
		return models.Bill{}, repository.ErrBillNotFound
	}
	return bill, nil
}

func (s *fakeBillStore) ListByEmail(_ context.Context, email string) ([]models.Bill, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Bill
	for _, id := range s.order {
		if s.bills[id].Email == email {
			out = append(out, s.bills[id])
		}
	}
	return out, nil
}

func (s *fakeBillStore) List(context.Context) ([]models.Bill, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.Bill, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.bills[id])
	}
	return out, nil
}

func (s *fakeBillStore) Delete(_ context.Context, id string) error {
	s.calls = append(s.calls, "delete")
	if _, ok := s.bills[id]; !ok {
		return repository.ErrBillNotFound
	}
	delete(s.bills, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeObjectStore struct {
	calls   []string
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeObjectStore) PutReceipt(_ context.Context, objectKey string, data []byte, contentType string) (string, error) {
	s.calls = append(s.calls, "put")
	if s.putErr != nil {
		return "", s.putErr
	}
	s.objects[objectKey] = data
	s.types[objectKey] = contentType
	return fmt.Sprintf("https://storage.local/receipts/%s", objectKey), nil
}

// fakeTracker maps bill id to the object key the marker carried.
type fakeTracker struct {
	pending map[string]string
	marks   int
	clears  int
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{pending: map[string]string{}}
}

func (t *fakeTracker) MarkPending(_ context.Context, billID string, objectKey string, _ time.Time) error {
	t.marks++
	t.pending[billID] = objectKey
	return nil
}

func (t *fakeTracker) ClearPending(_ context.Context, billID string, _ string) error {
	t.clears++
	delete(t.pending, billID)
	return nil
}

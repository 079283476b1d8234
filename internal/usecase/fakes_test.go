package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"

	"snapstock/internal/domain/entity"
	"snapstock/pkg/errors"
)

var errNotFound = errors.NotFound("record", nil)

// uploadScript controls one Upload call of the fake image store.
type uploadScript struct {
	gate chan struct{} // when non-nil, Upload blocks here first
	url  string
	err  error
}

type fakeImageStore struct {
	mu      sync.Mutex
	scripts []uploadScript
	calls   int
}

func (s *fakeImageStore) Upload(ctx context.Context, file io.Reader, size int64, contentType string, onProgress func(float64)) (string, error) {
	s.mu.Lock()
	idx := s.calls
	s.calls++
	var script uploadScript
	if idx < len(s.scripts) {
		script = s.scripts[idx]
	}
	s.mu.Unlock()

	if script.gate != nil {
		<-script.gate
	}
	if onProgress != nil {
		onProgress(0.5)
		onProgress(1.0)
	}
	if script.err != nil {
		return "", script.err
	}
	if script.url == "" {
		return fmt.Sprintf("https://blobs.test/item-%d.jpg", idx), nil
	}
	return script.url, nil
}

func (s *fakeImageStore) Delete(ctx context.Context, fileURL string) error { return nil }
func (s *fakeImageStore) Close() error                                     { return nil }

func (s *fakeImageStore) uploadCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeCaptioner struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (c *fakeCaptioner) Caption(ctx context.Context, image []byte, mimeType string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.text, c.err
}

func (c *fakeCaptioner) captionCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type fakeItemRepo struct {
	mu          sync.Mutex
	items       map[string]*entity.Item
	createErr   error
	createGate  chan struct{}
	createCalls int
	seq         int

	watchCh     chan entity.CatalogSnapshot
	watchActive int
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[string]*entity.Item)}
}

func (r *fakeItemRepo) Create(ctx context.Context, item *entity.Item) error {
	r.mu.Lock()
	gate := r.createGate
	r.createCalls++
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	item.ID = fmt.Sprintf("item-%d", r.seq)
	stored := *item
	r.items[item.ID] = &stored
	return nil
}

func (r *fakeItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, errNotFound
	}
	itemCopy := *item
	return &itemCopy, nil
}

func (r *fakeItemRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*entity.Item, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*entity.Item
	for _, item := range r.items {
		if item.OwnerID == ownerID {
			itemCopy := *item
			items = append(items, &itemCopy)
		}
	}
	return items, int64(len(items)), nil
}

func (r *fakeItemRepo) Watch(ctx context.Context, ownerID string) (<-chan entity.CatalogSnapshot, error) {
	r.mu.Lock()
	r.watchActive++
	upstream := r.watchCh
	r.mu.Unlock()

	out := make(chan entity.CatalogSnapshot)
	go func() {
		defer close(out)
		defer func() {
			r.mu.Lock()
			r.watchActive--
			r.mu.Unlock()
		}()
		for {
			select {
			case snap, ok := <-upstream:
				if !ok {
					return
				}
				select {
				case out <- snap:
					if snap.Err != nil {
						return
					}
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (r *fakeItemRepo) activeWatches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.watchActive
}

func (r *fakeItemRepo) itemCreateCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createCalls
}

type fakeOrderRepo struct {
	mu          sync.Mutex
	orders      map[string]*entity.Order
	createErr   error
	createGate  chan struct{}
	createCalls int
	seq         int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*entity.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *entity.Order) error {
	r.mu.Lock()
	gate := r.createGate
	r.createCalls++
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	order.ID = fmt.Sprintf("order-%d", r.seq)
	stored := *order
	r.orders[order.ID] = &stored
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, errNotFound
	}
	orderCopy := *order
	return &orderCopy, nil
}

func (r *fakeOrderRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []*entity.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orderCopy := *order
			orders = append(orders, &orderCopy)
		}
	}
	return orders, int64(len(orders)), nil
}

func (r *fakeOrderRepo) UpdatePaymentStatus(ctx context.Context, id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return errNotFound
	}
	order.PaymentStatus = status
	return nil
}

func (r *fakeOrderRepo) UpdateShippingStatus(ctx context.Context, id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return errNotFound
	}
	order.ShippingStatus = status
	return nil
}

func (r *fakeOrderRepo) orderCreateCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createCalls
}

package usecase

import (
	"context"
	"sync"

	"snapstock/internal/domain/entity"
	"snapstock/internal/domain/repository"
	"snapstock/pkg/logger"
)

// CatalogUseCase maintains the live per-user catalog view. It guarantees at
// most one underlying change-feed listener per user: re-subscribing replaces
// the previous subscription instead of stacking a second listener.
type CatalogUseCase struct {
	itemRepo repository.ItemRepository

	mu    sync.Mutex
	feeds map[string]*catalogFeed
}

type catalogFeed struct {
	cancel context.CancelFunc
	out    chan entity.CatalogSnapshot
}

func NewCatalogUseCase(itemRepo repository.ItemRepository) *CatalogUseCase {
	return &CatalogUseCase{
		itemRepo: itemRepo,
		feeds:    make(map[string]*catalogFeed),
	}
}

// Subscribe opens the user's live catalog view. The returned channel delivers
// the initial snapshot followed by a full snapshot per underlying change, and
// closes after the release func is called, after a terminal error snapshot,
// or when ctx ends. Delivery coalesces: a consumer that falls behind skips
// straight to the newest snapshot rather than replaying stale ones.
func (uc *CatalogUseCase) Subscribe(ctx context.Context, userID string) (<-chan entity.CatalogSnapshot, func(), error) {
	uc.mu.Lock()
	if prev, ok := uc.feeds[userID]; ok {
		// The newest subscription wins; the superseded listener is released.
		prev.cancel()
		delete(uc.feeds, userID)
		logger.Debug("Replacing catalog subscription for user %s", userID)
	}

	feedCtx, cancel := context.WithCancel(ctx)
	upstream, err := uc.itemRepo.Watch(feedCtx, userID)
	if err != nil {
		uc.mu.Unlock()
		cancel()
		return nil, nil, err
	}

	feed := &catalogFeed{
		cancel: cancel,
		out:    make(chan entity.CatalogSnapshot, 1),
	}
	uc.feeds[userID] = feed
	uc.mu.Unlock()

	go uc.pump(upstream, feed)

	release := func() {
		uc.mu.Lock()
		if current, ok := uc.feeds[userID]; ok && current == feed {
			delete(uc.feeds, userID)
		}
		uc.mu.Unlock()
		feed.cancel()
	}

	return feed.out, release, nil
}

// pump forwards snapshots from the repository feed to the consumer with
// latest-wins buffering. No snapshot is dropped for a consumer that keeps up;
// a slow consumer only ever misses superseded intermediates.
func (uc *CatalogUseCase) pump(upstream <-chan entity.CatalogSnapshot, feed *catalogFeed) {
	defer close(feed.out)

	var (
		pending    entity.CatalogSnapshot
		hasPending bool
	)

	for {
		var sendCh chan entity.CatalogSnapshot
		if hasPending {
			sendCh = feed.out
		}

		select {
		case snap, ok := <-upstream:
			if !ok {
				if hasPending {
					// Best effort: hand over the last snapshot if the
					// consumer is ready for it.
					select {
					case feed.out <- pending:
					default:
					}
				}
				return
			}
			pending = snap
			hasPending = true

		case sendCh <- pending:
			if pending.Err != nil {
				return
			}
			hasPending = false
		}
	}
}

// ListItems is the one-shot catalog read for consumers that do not hold a
// live subscription.
func (uc *CatalogUseCase) ListItems(ctx context.Context, userID string, limit, offset int) ([]*entity.Item, int64, error) {
	return uc.itemRepo.ListByOwner(ctx, userID, limit, offset)
}

package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapstock/internal/domain/entity"
	apperrors "snapstock/pkg/errors"
)

func snapshotWithTitles(titles ...string) entity.CatalogSnapshot {
	items := make([]entity.Item, len(titles))
	for i, title := range titles {
		items[i] = entity.Item{ID: title, Title: title}
	}
	return entity.CatalogSnapshot{Items: items}
}

func receiveSnapshot(t *testing.T, ch <-chan entity.CatalogSnapshot) entity.CatalogSnapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "snapshot channel closed unexpectedly")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return entity.CatalogSnapshot{}
	}
}

func TestSubscribeDeliversSnapshotsInOrder(t *testing.T) {
	repo := newFakeItemRepo()
	repo.watchCh = make(chan entity.CatalogSnapshot)
	uc := NewCatalogUseCase(repo)

	ch, release, err := uc.Subscribe(context.Background(), "user-1")
	require.NoError(t, err)
	defer release()

	repo.watchCh <- snapshotWithTitles("Mug")
	first := receiveSnapshot(t, ch)
	require.Len(t, first.Items, 1)
	assert.Equal(t, "Mug", first.Items[0].Title)

	repo.watchCh <- snapshotWithTitles("Vase", "Mug")
	second := receiveSnapshot(t, ch)
	require.Len(t, second.Items, 2)
	assert.Equal(t, "Vase", second.Items[0].Title)
}

func TestSubscribeCoalescesForSlowConsumer(t *testing.T) {
	repo := newFakeItemRepo()
	repo.watchCh = make(chan entity.CatalogSnapshot)
	uc := NewCatalogUseCase(repo)

	ch, release, err := uc.Subscribe(context.Background(), "user-1")
	require.NoError(t, err)
	defer release()

	// Two rapid feed events with no consumer read in between: the consumer
	// must end up observing the latest state, not a stale intermediate.
	repo.watchCh <- snapshotWithTitles("A")
	repo.watchCh <- snapshotWithTitles("B", "A")

	// A sequential consumer may observe the intermediate state, but the
	// latest one must arrive; nothing newer gets silently lost.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-ch:
			if len(snap.Items) == 2 && snap.Items[0].Title == "B" {
				return
			}
		case <-deadline:
			t.Fatal("latest snapshot never delivered")
		}
	}
}

func TestSubscribeTerminalErrorClosesChannel(t *testing.T) {
	repo := newFakeItemRepo()
	repo.watchCh = make(chan entity.CatalogSnapshot)
	uc := NewCatalogUseCase(repo)

	ch, release, err := uc.Subscribe(context.Background(), "user-1")
	require.NoError(t, err)
	defer release()

	repo.watchCh <- entity.CatalogSnapshot{Err: apperrors.Unavailable("Catalog feed failed", nil)}

	snap := receiveSnapshot(t, ch)
	require.Error(t, snap.Err)

	_, open := <-ch
	assert.False(t, open, "channel must close after a terminal error snapshot")
}

func TestResubscribeReplacesListener(t *testing.T) {
	repo := newFakeItemRepo()
	repo.watchCh = make(chan entity.CatalogSnapshot)
	uc := NewCatalogUseCase(repo)

	first, _, err := uc.Subscribe(context.Background(), "user-1")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return repo.activeWatches() == 1 }, time.Second, time.Millisecond)

	second, release2, err := uc.Subscribe(context.Background(), "user-1")
	require.NoError(t, err)
	defer release2()

	// The first feed is torn down rather than left dangling alongside the new one.
	require.Eventually(t, func() bool { return repo.activeWatches() == 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		select {
		case _, open := <-first:
			return !open
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	repo.watchCh <- snapshotWithTitles("Mug")
	snap := receiveSnapshot(t, second)
	assert.Len(t, snap.Items, 1)
}

func TestReleaseStopsDelivery(t *testing.T) {
	repo := newFakeItemRepo()
	repo.watchCh = make(chan entity.CatalogSnapshot)
	uc := NewCatalogUseCase(repo)

	ch, release, err := uc.Subscribe(context.Background(), "user-1")
	require.NoError(t, err)

	release()

	require.Eventually(t, func() bool { return repo.activeWatches() == 0 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		select {
		case _, open := <-ch:
			return !open
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	// Releasing twice is harmless.
	release()
}

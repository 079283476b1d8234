package repository

import (
	"context"

	"snapstock/internal/domain/entity"
)

type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*entity.Item, int64, error)

	// Watch opens a change feed over the owner's catalog, ordered by createdAt
	// descending. The first element on the channel is the initial snapshot;
	// each subsequent element is a full recomputed snapshot. A feed error is
	// delivered as a terminal snapshot with Err set. The channel closes when
	// ctx is cancelled or after a terminal error.
	Watch(ctx context.Context, ownerID string) (<-chan entity.CatalogSnapshot, error)
}

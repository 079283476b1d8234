package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"snapstock/internal/domain/entity"
	"snapstock/internal/domain/repository"
	"snapstock/pkg/errors"
	"snapstock/pkg/logger"
)

type firestoreItemRepository struct {
	client *firestore.Client
}

func NewFirestoreItemRepository(client *firestore.Client) repository.ItemRepository {
	return &firestoreItemRepository{
		client: client,
	}
}

func (r *firestoreItemRepository) Create(ctx context.Context, item *entity.Item) error {
	// Generate ID if not provided
	if item.ID == "" {
		doc := r.client.Collection("items").NewDoc()
		item.ID = doc.ID
	}

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	_, err := r.client.Collection("items").Doc(item.ID).Set(ctx, item)
	if err != nil {
		return mapWriteError("item", err)
	}

	return nil
}

func (r *firestoreItemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	doc, err := r.client.Collection("items").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Item", err)
		}
		return nil, errors.Internal("Failed to get item", err)
	}

	var item entity.Item
	if err := doc.DataTo(&item); err != nil {
		return nil, errors.Internal("Failed to parse item data", err)
	}

	return &item, nil
}

func (r *firestoreItemRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*entity.Item, int64, error) {
	query := r.client.Collection("items").Query.
		Where("ownerId", "==", ownerID).
		OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count items", err)
	}
	total := int64(len(allDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var items []*entity.Item

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate items", err)
		}
		var item entity.Item
		if err := doc.DataTo(&item); err != nil {
			return nil, 0, errors.Internal("Failed to parse item data", err)
		}
		items = append(items, &item)
	}

	return items, total, nil
}

// Watch subscribes to the owner's catalog via Firestore query snapshots. Every
// feed event rebuilds the full ordered item list; consumers always see a whole
// snapshot, never a partial update.
func (r *firestoreItemRepository) Watch(ctx context.Context, ownerID string) (<-chan entity.CatalogSnapshot, error) {
	query := r.client.Collection("items").Query.
		Where("ownerId", "==", ownerID).
		OrderBy("createdAt", firestore.Desc)

	snapshots := query.Snapshots(ctx)
	out := make(chan entity.CatalogSnapshot)

	go func() {
		defer close(out)
		defer snapshots.Stop()

		for {
			snap, err := snapshots.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return
				}
				logger.Error("Catalog feed error for owner %s: %v", ownerID, err)
				select {
				case out <- entity.CatalogSnapshot{Err: errors.Unavailable("Catalog feed failed", err)}:
				case <-ctx.Done():
				}
				return
			}

			items := make([]entity.Item, 0, snap.Size)
			docs := snap.Documents
			for {
				doc, err := docs.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					logger.Warn("Skipping unreadable catalog document for owner %s: %v", ownerID, err)
					continue
				}
				var item entity.Item
				if err := doc.DataTo(&item); err != nil {
					logger.Warn("Skipping unparsable catalog document for owner %s: %v", ownerID, err)
					continue
				}
				items = append(items, item)
			}

			select {
			case out <- entity.CatalogSnapshot{Items: items}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func mapWriteError(resource string, err error) error {
	switch status.Code(err) {
	case codes.PermissionDenied:
		return errors.PermissionDenied("Not allowed to write "+resource, err)
	case codes.Unavailable, codes.DeadlineExceeded:
		return errors.Unavailable("Datastore unavailable while writing "+resource, err)
	default:
		return errors.Internal("Failed to write "+resource, err)
	}
}

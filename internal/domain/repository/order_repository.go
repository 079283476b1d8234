package repository

import (
	"context"

	"snapstock/internal/domain/entity"
)

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Order, int64, error)
	UpdatePaymentStatus(ctx context.Context, id string, status string) error
	UpdateShippingStatus(ctx context.Context, id string, status string) error
}

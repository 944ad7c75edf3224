// Package handler implements the HTTP endpoints. Every state-changing
// handler follows the same contract: the resolved caller and role gates are
// applied by the router middleware, the handler validates its input, the
// store applies the mutation, and the dirtied view groups are invalidated
// before the response is written.
package handler

import (
	"context"

	"github.com/locaspot/booking-api/internal/model"
	"github.com/locaspot/booking-api/internal/repository"
)

// Store interfaces consumed by the handlers. The SQL repositories satisfy
// them; tests substitute in-memory implementations.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Patch(ctx context.Context, id uint64, p repository.UserPatch) (model.User, error)
}

type ProductStore interface {
	CreateWithImages(ctx context.Context, p *model.Product, imageURLs []string) error
	GetByID(ctx context.Context, id uint64) (model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	Update(ctx context.Context, id uint64, in repository.ProductUpdate) (model.Product, error)
	Patch(ctx context.Context, id uint64, p repository.ProductPatch) (model.Product, error)
	Delete(ctx context.Context, id uint64) error
}

type ReservationStore interface {
	Create(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
	ListAll(ctx context.Context) ([]model.Reservation, error)
	UpdateStatus(ctx context.Context, id uint64, status string) (model.Reservation, error)
	Delete(ctx context.Context, id uint64) error
}

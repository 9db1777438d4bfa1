package leasing

import (
	"context"

	"playerhire/internal/domain"
	"playerhire/internal/repository"

	"github.com/google/uuid"
)

// ListingStore is the persistence contract the engine relies on.
// UpdateIfVersion must fail with repository.ErrVersionConflict when the
// stored version differs from expectedVersion.
type ListingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PlayerListing, error)
	FindByOwner(ctx context.Context, ownerUserID int64) (*domain.PlayerListing, error)
	Create(ctx context.Context, l *domain.PlayerListing) error
	UpdateIfVersion(ctx context.Context, l *domain.PlayerListing, expectedVersion int64) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f repository.PlayerListingFilters) ([]domain.PlayerListing, error)
}

// ListingCache serves read-only lookups. A miss is nil, nil.
// SetListing must not replace an entry holding the same or a newer Version,
// and after DeleteListing no older SetListing may bring the entry back.
// InvalidateListing simply drops whatever is cached.
type ListingCache interface {
	GetListing(ctx context.Context, id uuid.UUID) (*domain.PlayerListing, error)
	SetListing(ctx context.Context, l *domain.PlayerListing) error
	DeleteListing(ctx context.Context, id uuid.UUID) error
	InvalidateListing(ctx context.Context, id uuid.UUID) error
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

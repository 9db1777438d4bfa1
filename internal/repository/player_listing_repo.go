package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playerhire/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlayerListingFilters struct {
	Status   domain.ListingStatus
	GameName string
	Rank     string
	Role     string
	Server   string
	Limit    int
	Offset   int
}

type PlayerListingRepository struct {
	db *gorm.DB
}

func NewPlayerListingRepository(db *gorm.DB) *PlayerListingRepository {
	return &PlayerListingRepository{db: db}
}

func (r *PlayerListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PlayerListing, error) {
	var l domain.PlayerListing
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// FindByOwner returns nil, nil when the owner has no listing.
func (r *PlayerListingRepository) FindByOwner(ctx context.Context, ownerUserID int64) (*domain.PlayerListing, error) {
	var l domain.PlayerListing
	err := r.db.WithContext(ctx).Where("owner_user_id = ?", ownerUserID).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// Create inserts a listing. The unique owner index turns a concurrent second
// insert for the same owner into ErrAlreadyExists.
func (r *PlayerListingRepository) Create(ctx context.Context, l *domain.PlayerListing) error {
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// UpdateIfVersion writes every mutable column of l provided the stored row
// still carries expectedVersion, then bumps l.Version.
func (r *PlayerListingRepository) UpdateIfVersion(ctx context.Context, l *domain.PlayerListing, expectedVersion int64) error {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).
		Model(&domain.PlayerListing{}).
		Where("id = ? AND version = ?", l.ID, expectedVersion).
		Updates(map[string]interface{}{
			"username":         l.Username,
			"game_name":        l.GameName,
			"rank":             l.Rank,
			"role":             l.Role,
			"server":           l.Server,
			"price_per_hour":   l.PricePerHour,
			"description":      l.Description,
			"status":           l.Status,
			"hired_by_user_id": l.HiredByUserID,
			"hire_date":        l.HireDate,
			"return_date":      l.ReturnDate,
			"hours_hired":      l.HoursHired,
			"rating":           l.Rating,
			"version":          expectedVersion + 1,
			"updated_at":       now,
		})
	if tx.Error != nil {
		return fmt.Errorf("update player listing: %w", tx.Error)
	}

	if tx.RowsAffected == 0 {
		var cnt int64
		if err := r.db.WithContext(ctx).Model(&domain.PlayerListing{}).Where("id = ?", l.ID).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}

	l.Version = expectedVersion + 1
	l.UpdatedAt = now
	return nil
}

func (r *PlayerListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.PlayerListing{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns listings matching the non-empty filters, oldest first.
func (r *PlayerListingRepository) List(ctx context.Context, f PlayerListingFilters) ([]domain.PlayerListing, error) {
	q := r.db.WithContext(ctx).Model(&domain.PlayerListing{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.GameName != "" {
		q = q.Where("game_name = ?", f.GameName)
	}
	if f.Rank != "" {
		q = q.Where("rank = ?", f.Rank)
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Server != "" {
		q = q.Where("server = ?", f.Server)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	listings := make([]domain.PlayerListing, 0)
	if err := q.Order("created_at asc").Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

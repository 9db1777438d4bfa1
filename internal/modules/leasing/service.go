package leasing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"playerhire/internal/domain"
	"playerhire/internal/pkg/metrics"
	"playerhire/internal/pkg/validator"
	"playerhire/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// A conflicting write is re-read and re-validated once before giving up.
const maxWriteAttempts = 2

// Guard vetoes a write. It sees the listing as read inside the versioned
// write cycle, so the check and the write apply to the same row.
type Guard func(l *domain.PlayerListing) error

type Service struct {
	store   ListingStore
	cache   ListingCache
	events  EventPublisher
	metrics *metrics.Leasing
	log     *zap.SugaredLogger
	now     func() time.Time
}

// NewService wires the engine. cache, events and m may be nil.
func NewService(
	store ListingStore,
	cache ListingCache,
	events EventPublisher,
	m *metrics.Leasing,
	log *zap.SugaredLogger,
) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		store:   store,
		cache:   cache,
		events:  events,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// Create lists a new player for owner. Status, lease fields and rating are
// never taken from the caller.
func (s *Service) Create(ctx context.Context, ownerUserID int64, fields domain.DescriptiveFields) (*domain.PlayerListing, error) {
	fields, err := normalizeFields(fields)
	if err != nil {
		return nil, s.finish("create", err)
	}

	existing, err := s.store.FindByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, s.finish("create", fmt.Errorf("find listing by owner: %w", err))
	}
	if existing != nil {
		return nil, s.finish("create", ErrAlreadyListed)
	}

	l := &domain.PlayerListing{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		Status:      domain.ListingAvailable,
		Version:     1,
	}
	l.ApplyDescriptive(fields)

	if err := s.store.Create(ctx, l); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, s.finish("create", ErrAlreadyListed)
		}
		return nil, s.finish("create", fmt.Errorf("create listing: %w", err))
	}

	s.afterWrite(ctx, domain.EventListingCreated, ownerUserID, l)
	return l, s.finish("create", nil)
}

// Update overwrites descriptive fields and, when status is non-nil, the status
// itself. Lease fields are left as they are; this is the administrative path
// and does not go through the hire/return transition rules.
func (s *Service) Update(ctx context.Context, id uuid.UUID, fields domain.DescriptiveFields, status *domain.ListingStatus, actor Actor, guards ...Guard) (*domain.PlayerListing, error) {
	fields, err := normalizeFields(fields)
	if err != nil {
		return nil, s.finish("update", err)
	}
	if status != nil && !status.Valid() {
		return nil, s.finish("update", &ValidationError{Fields: map[string]string{"status": "oneof"}})
	}

	l, err := s.mutate(ctx, "update", id, guards, func(l *domain.PlayerListing) error {
		l.ApplyDescriptive(fields)
		if status != nil {
			l.Status = *status
		}
		return nil
	})
	if err != nil {
		return nil, s.finish("update", err)
	}

	s.afterWrite(ctx, domain.EventListingUpdated, actor.UserID, l)
	return l, s.finish("update", nil)
}

// Delete removes the listing whatever its status.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.finish("delete", ErrNotFound)
		}
		return s.finish("delete", fmt.Errorf("delete listing: %w", err))
	}

	if s.cache != nil {
		if err := s.cache.DeleteListing(ctx, id); err != nil {
			s.log.Warnw("cache delete failed", "listing_id", id, "error", err)
		}
	}
	s.publish(ctx, domain.ListingEvent{
		Type:        domain.EventListingDeleted,
		ListingID:   id,
		ActorUserID: actor.UserID,
		OccurredAt:  s.now().UTC(),
	})
	return s.finish("delete", nil)
}

// Hire leases an AVAILABLE listing to the actor for the given hours.
func (s *Service) Hire(ctx context.Context, id uuid.UUID, actor Actor, hours int, guards ...Guard) (*domain.PlayerListing, error) {
	if hours < 1 {
		return nil, s.finish("hire", ErrInvalidHours)
	}

	l, err := s.mutate(ctx, "hire", id, guards, func(l *domain.PlayerListing) error {
		if _, ok := domain.NextStatus(l.Status, domain.ActionHire); !ok {
			return ErrNotAvailable
		}
		l.StartLease(actor.UserID, hours, s.now())
		return nil
	})
	if err != nil {
		return nil, s.finish("hire", err)
	}

	s.afterWrite(ctx, domain.EventListingHired, actor.UserID, l)
	return l, s.finish("hire", nil)
}

// Return ends the current lease. Whether actor may do so is decided by the
// caller through guards; actor is only recorded on the event.
func (s *Service) Return(ctx context.Context, id uuid.UUID, actor Actor, guards ...Guard) (*domain.PlayerListing, error) {
	l, err := s.mutate(ctx, "return", id, guards, func(l *domain.PlayerListing) error {
		if _, ok := domain.NextStatus(l.Status, domain.ActionReturn); !ok {
			return ErrNotHired
		}
		l.EndLease()
		return nil
	})
	if err != nil {
		return nil, s.finish("return", err)
	}

	s.afterWrite(ctx, domain.EventListingReturned, actor.UserID, l)
	return l, s.finish("return", nil)
}

// Rate folds value into the listing's running rating.
func (s *Service) Rate(ctx context.Context, id uuid.UUID, actor Actor, value float64) (*domain.PlayerListing, error) {
	if math.IsNaN(value) || value < domain.MinRating || value > domain.MaxRating {
		return nil, s.finish("rate", ErrInvalidRating)
	}

	l, err := s.mutate(ctx, "rate", id, nil, func(l *domain.PlayerListing) error {
		l.AddRating(value)
		return nil
	})
	if err != nil {
		return nil, s.finish("rate", err)
	}

	s.afterWrite(ctx, domain.EventListingRated, actor.UserID, l)
	return l, s.finish("rate", nil)
}

// Get serves from the cache when possible.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.PlayerListing, error) {
	if s.cache != nil {
		cached, err := s.cache.GetListing(ctx, id)
		if err != nil {
			s.log.Warnw("cache get failed", "listing_id", id, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	l, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr("get", err)
	}
	s.cacheListing(ctx, l)
	return l, nil
}

// StatusAny in ListQuery.Status lifts the status filter entirely.
const StatusAny domain.ListingStatus = "ANY"

func (s *Service) List(ctx context.Context, q ListQuery) ([]domain.PlayerListing, error) {
	f := repository.PlayerListingFilters{
		GameName: strings.TrimSpace(q.Game),
		Rank:     strings.TrimSpace(q.Rank),
		Role:     strings.TrimSpace(q.Role),
		Server:   strings.TrimSpace(q.Server),
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	switch st := domain.ListingStatus(strings.ToUpper(strings.TrimSpace(q.Status))); {
	case st == StatusAny:
	case st != "":
		if !st.Valid() {
			return nil, &ValidationError{Fields: map[string]string{"status": "oneof"}}
		}
		f.Status = st
	case f.GameName != "" || f.Rank != "" || f.Role != "" || f.Server != "":
		// attribute lookups only offer players that can be hired right now
		f.Status = domain.ListingAvailable
	}
	if f.Limit < 0 || f.Offset < 0 {
		return nil, &ValidationError{Fields: map[string]string{"limit": "gte"}}
	}

	listings, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return listings, nil
}

// mutate runs one read-validate-write cycle against the store. guards and
// apply see a fresh copy of the listing on every attempt and must not have
// side effects beyond mutating it.
func (s *Service) mutate(ctx context.Context, op string, id uuid.UUID, guards []Guard, apply func(l *domain.PlayerListing) error) (*domain.PlayerListing, error) {
	for attempt := 1; ; attempt++ {
		l, err := s.store.GetByID(ctx, id)
		if err != nil {
			return nil, translateStoreErr(op, err)
		}

		for _, guard := range guards {
			if err := guard(l); err != nil {
				return nil, err
			}
		}

		expected := l.Version
		if err := apply(l); err != nil {
			return nil, err
		}

		err = s.store.UpdateIfVersion(ctx, l, expected)
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, translateStoreErr(op, err)
		}

		s.metrics.ObserveConflict(op)
		s.log.Debugw("version conflict", "op", op, "listing_id", id, "attempt", attempt)
		if attempt >= maxWriteAttempts {
			return nil, ErrConcurrentUpdate
		}
	}
}

func (s *Service) afterWrite(ctx context.Context, eventType string, actorUserID int64, l *domain.PlayerListing) {
	s.cacheListing(ctx, l)
	snapshot := *l
	s.publish(ctx, domain.ListingEvent{
		Type:        eventType,
		ListingID:   l.ID,
		ActorUserID: actorUserID,
		Status:      l.Status,
		Listing:     &snapshot,
		OccurredAt:  s.now().UTC(),
	})
}

func (s *Service) cacheListing(ctx context.Context, l *domain.PlayerListing) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetListing(ctx, l); err != nil {
		s.log.Warnw("cache set failed", "listing_id", l.ID, "error", err)
		if err := s.cache.InvalidateListing(ctx, l.ID); err != nil {
			s.log.Warnw("cache evict failed", "listing_id", l.ID, "error", err)
		}
	}
}

func (s *Service) publish(ctx context.Context, ev domain.ListingEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev.Type, ev); err != nil {
		s.log.Warnw("publish listing event failed", "type", ev.Type, "listing_id", ev.ListingID, "error", err)
	}
}

// finish records the outcome of op and passes err through.
func (s *Service) finish(op string, err error) error {
	s.metrics.ObserveOperation(op, outcome(err))
	if err != nil && outcome(err) == "error" {
		s.log.Errorw("leasing operation failed", "op", op, "error", err)
	}
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyListed):
		return "already_listed"
	case errors.Is(err, ErrNotAvailable):
		return "not_available"
	case errors.Is(err, ErrNotHired):
		return "not_hired"
	case errors.Is(err, ErrInvalidHours):
		return "invalid_hours"
	case errors.Is(err, ErrInvalidRating):
		return "invalid_rating"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConcurrentUpdate):
		return "conflict"
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrSelfHire):
		return "forbidden"
	default:
		return "error"
	}
}

func translateStoreErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s listing: %w", op, err)
}

func normalizeFields(f domain.DescriptiveFields) (domain.DescriptiveFields, error) {
	f.Username = strings.TrimSpace(f.Username)
	f.GameName = strings.TrimSpace(f.GameName)
	f.Rank = strings.TrimSpace(f.Rank)
	f.Role = strings.TrimSpace(f.Role)
	f.Server = strings.TrimSpace(f.Server)
	f.Description = strings.TrimSpace(f.Description)

	if errs := validator.Validate(f); errs != nil {
		return f, &ValidationError{Fields: errs}
	}
	if math.IsNaN(f.PricePerHour) || math.IsInf(f.PricePerHour, 0) {
		return f, &ValidationError{Fields: map[string]string{"price_per_hour": "gte"}}
	}
	return f, nil
}

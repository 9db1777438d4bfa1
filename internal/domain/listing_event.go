package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventListingCreated  = "players.created"
	EventListingUpdated  = "players.updated"
	EventListingDeleted  = "players.deleted"
	EventListingHired    = "players.hired"
	EventListingReturned = "players.returned"
	EventListingRated    = "players.rated"
)

// ListingEvent is published after a listing change has been persisted.
// Listing is nil for deletions.
type ListingEvent struct {
	Type        string         `json:"type"`
	ListingID   uuid.UUID      `json:"listing_id"`
	ActorUserID int64          `json:"actor_user_id,omitempty"`
	Status      ListingStatus  `json:"status,omitempty"`
	Listing     *PlayerListing `json:"listing,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

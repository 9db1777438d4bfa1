package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListingStatus string

const (
	ListingAvailable ListingStatus = "AVAILABLE"
	ListingHired     ListingStatus = "HIRED"
)

func (s ListingStatus) Valid() bool {
	return s == ListingAvailable || s == ListingHired
}

const (
	MinRating = 0.0
	MaxRating = 5.0

	MaxDescriptionLength = 1000
)

// PlayerListing is a hireable player profile together with its current lease.
// Lease fields (HiredByUserID, HireDate, ReturnDate, HoursHired) are set only
// while Status is HIRED.
type PlayerListing struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerUserID int64     `json:"owner_user_id" gorm:"not null;uniqueIndex:idx_player_listings_owner"`

	Username     string  `json:"username" gorm:"size:100;not null"`
	GameName     string  `json:"game_name" gorm:"size:100;not null;index"`
	Rank         string  `json:"rank" gorm:"size:50;not null;index"`
	Role         string  `json:"role" gorm:"size:50;not null;index"`
	Server       string  `json:"server" gorm:"size:50;not null;index"`
	PricePerHour float64 `json:"price_per_hour" gorm:"not null;default:0"`
	Description  string  `json:"description,omitempty" gorm:"type:text"`

	Status        ListingStatus `json:"status" gorm:"type:varchar(16);not null;index;default:'AVAILABLE'"`
	HiredByUserID *int64        `json:"hired_by_user_id,omitempty"`
	HireDate      *time.Time    `json:"hire_date,omitempty"`
	ReturnDate    *time.Time    `json:"return_date,omitempty"`
	HoursHired    *int          `json:"hours_hired,omitempty"`

	Rating *float64 `json:"rating,omitempty"`

	Version   int64     `json:"version" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PlayerListing) TableName() string {
	return "player_listings"
}

func (l *PlayerListing) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Version == 0 {
		l.Version = 1
	}
	return nil
}

// DescriptiveFields are the attributes only the owner (or an admin) edits.
type DescriptiveFields struct {
	Username     string  `json:"username" validate:"required,max=100"`
	GameName     string  `json:"game_name" validate:"required,max=100"`
	Rank         string  `json:"rank" validate:"required,max=50"`
	Role         string  `json:"role" validate:"required,max=50"`
	Server       string  `json:"server" validate:"required,max=50"`
	PricePerHour float64 `json:"price_per_hour" validate:"gte=0"`
	Description  string  `json:"description" validate:"max=1000"`
}

func (l *PlayerListing) ApplyDescriptive(f DescriptiveFields) {
	l.Username = f.Username
	l.GameName = f.GameName
	l.Rank = f.Rank
	l.Role = f.Role
	l.Server = f.Server
	l.PricePerHour = f.PricePerHour
	l.Description = f.Description
}

// StartLease moves the listing into HIRED. The return date is always one
// calendar day after the hire date, independent of hours.
func (l *PlayerListing) StartLease(hirerUserID int64, hours int, today time.Time) {
	day := TruncateToDay(today)
	ret := day.AddDate(0, 0, 1)
	hirer := hirerUserID
	h := hours

	l.Status = ListingHired
	l.HiredByUserID = &hirer
	l.HireDate = &day
	l.ReturnDate = &ret
	l.HoursHired = &h
}

func (l *PlayerListing) EndLease() {
	l.Status = ListingAvailable
	l.HiredByUserID = nil
	l.HireDate = nil
	l.ReturnDate = nil
	l.HoursHired = nil
}

// AddRating folds value into the running rating: the first sample is taken
// as is, later samples are averaged with the accumulated value.
func (l *PlayerListing) AddRating(value float64) {
	if l.Rating == nil {
		v := value
		l.Rating = &v
		return
	}
	v := (*l.Rating + value) / 2
	l.Rating = &v
}

// LeaseConsistent reports whether status and lease fields agree.
func (l *PlayerListing) LeaseConsistent() bool {
	set := l.HiredByUserID != nil && l.HireDate != nil && l.ReturnDate != nil && l.HoursHired != nil
	unset := l.HiredByUserID == nil && l.HireDate == nil && l.ReturnDate == nil && l.HoursHired == nil
	switch l.Status {
	case ListingHired:
		return set && *l.HoursHired >= 1
	case ListingAvailable:
		return unset
	default:
		return false
	}
}

func TruncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

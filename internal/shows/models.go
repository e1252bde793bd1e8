package shows

import (
	"time"

	"github.com/google/uuid"

	"cinebook/internal/layouts"
)

type ShowStatus string

const (
	StatusScheduled ShowStatus = "SCHEDULED"
	StatusRunning   ShowStatus = "RUNNING"
	StatusCompleted ShowStatus = "COMPLETED"
	StatusCancelled ShowStatus = "CANCELLED"
)

// Show is the bookable unit: one movie on one screen in one time window.
// The movie title is denormalized onto the show so listings and
// notifications never need a catalog join.
type Show struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ScreenID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"screen_id"`
	VendorID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"vendor_id"`
	MovieID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"movie_id"`
	MovieTitle string     `gorm:"not null" json:"movie_title"`
	Language   string     `json:"language"`
	StartTime  time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime    time.Time  `gorm:"not null" json:"end_time"`
	Status     ShowStatus `gorm:"default:'SCHEDULED';index" json:"status"`

	// PriceOverridePercent scales the layout's base prices, 100 = as-is.
	PriceOverridePercent int `gorm:"default:100" json:"price_override_percent"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BookedSeats []BookedSeat `json:"booked_seats,omitempty" gorm:"foreignKey:ShowID;constraint:OnDelete:CASCADE;"`
}

func (Show) TableName() string {
	return "shows"
}

// IsSelectable reports whether new seat selections are accepted.
func (s *Show) IsSelectable(now time.Time) bool {
	return s.Status == StatusScheduled && now.Before(s.StartTime)
}

// EffectivePrice applies the show's price override to a seat's base price.
func (s *Show) EffectivePrice(basePrice float64) float64 {
	if s.PriceOverridePercent <= 0 || s.PriceOverridePercent == 100 {
		return basePrice
	}
	return basePrice * float64(s.PriceOverridePercent) / 100
}

// BookedSeat is one claimed seat on a show. A row with is_pending=true
// is a hold awaiting payment; is_pending=false is a confirmed booking.
// The composite unique index on (show_id, seat_number) is the storage
// backstop for seat exclusivity.
type BookedSeat struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ShowID     uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:unique_seat_per_show" json:"show_id"`
	SeatNumber string           `gorm:"not null;uniqueIndex:unique_seat_per_show" json:"seat_number"`
	SeatID     uuid.UUID        `gorm:"type:uuid;not null" json:"seat_id"`
	UserID     uuid.UUID        `gorm:"type:uuid;index;not null" json:"user_id"`
	SeatType   layouts.SeatType `gorm:"not null" json:"seat_type"`
	Row        int              `gorm:"not null" json:"row"`
	Col        int              `gorm:"not null" json:"col"`
	Price      float64          `gorm:"not null" json:"price"`
	IsPending  bool             `gorm:"not null;default:true" json:"is_pending"`
	HeldAt     time.Time        `gorm:"not null" json:"held_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BookedSeat) TableName() string {
	return "booked_seats"
}

// Expired reports whether a pending hold is past its TTL at the given cutoff.
func (b *BookedSeat) Expired(cutoff time.Time) bool {
	return b.IsPending && b.HeldAt.Before(cutoff)
}

package bookings

import (
	"time"

	"github.com/google/uuid"

	"cinebook/internal/layouts"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusExpired   BookingStatus = "EXPIRED"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Booking groups a user's held seats on one show into a payable unit.
// Seat and amount values are snapshots taken at hold time; later layout
// or price edits never reprice an existing booking.
type Booking struct {
	ID          uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID     `gorm:"type:uuid;index;not null" json:"user_id"`
	ShowID      uuid.UUID     `gorm:"type:uuid;index;not null" json:"show_id"`
	VendorID    uuid.UUID     `gorm:"type:uuid;index;not null" json:"vendor_id"`
	MovieTitle  string        `gorm:"not null" json:"movie_title"`
	TotalAmount float64       `gorm:"not null" json:"total_amount"`
	Status      BookingStatus `gorm:"default:'PENDING';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Seats   []BookingSeat `json:"seats,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
	Payment *Payment      `json:"payment,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

func (Booking) TableName() string {
	return "bookings"
}

// BookingSeat snapshots one seat within a booking.
type BookingSeat struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID  uuid.UUID        `gorm:"type:uuid;index;not null" json:"booking_id"`
	SeatNumber string           `gorm:"not null" json:"seat_number"`
	SeatType   layouts.SeatType `gorm:"not null" json:"seat_type"`
	Price      float64          `gorm:"not null" json:"price"`

	CreatedAt time.Time `json:"created_at"`
}

func (BookingSeat) TableName() string {
	return "booking_seats"
}

// Payment is the single payment record per booking. Its PENDING to
// COMPLETED transition is the idempotency gate for webhook delivery:
// only the delivery that wins that conditional update runs the
// confirmation side effects.
type Payment struct {
	ID        uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID uuid.UUID     `gorm:"type:uuid;uniqueIndex;not null" json:"booking_id"`
	UserID    uuid.UUID     `gorm:"type:uuid;index;not null" json:"user_id"`
	Amount    float64       `gorm:"not null" json:"amount"`
	Status    PaymentStatus `gorm:"default:'PENDING';index" json:"status"`
	Provider  string        `gorm:"default:'stripe'" json:"provider"`

	// ProviderRef is the gateway's reference (checkout session id).
	ProviderRef *string `json:"provider_ref,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

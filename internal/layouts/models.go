package layouts

import (
	"time"

	"github.com/google/uuid"
)

type SeatType string

const (
	SeatTypeRegular     SeatType = "REGULAR"
	SeatTypePremium     SeatType = "PREMIUM"
	SeatTypeVIP         SeatType = "VIP"
	SeatTypeUnavailable SeatType = "UNAVAILABLE"
)

func IsValidSeatType(t string) bool {
	switch SeatType(t) {
	case SeatTypeRegular, SeatTypePremium, SeatTypeVIP, SeatTypeUnavailable:
		return true
	}
	return false
}

// SeatLayout is the reusable seat template a screen points at. Geometry and
// pricing are frozen once a screen references it; the only mutation is an
// explicit replace-all seat swap which re-validates the same invariants.
type SeatLayout struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VendorID    uuid.UUID `gorm:"type:uuid;index;not null" json:"vendor_id"`
	Name        string    `gorm:"not null" json:"name"`
	RowCount    int       `gorm:"not null" json:"row_count"`
	ColumnCount int       `gorm:"not null" json:"column_count"`
	// Capacity is the number of non-UNAVAILABLE seats.
	Capacity     int     `gorm:"not null" json:"capacity"`
	PriceRegular float64 `gorm:"not null" json:"price_regular"`
	PricePremium float64 `gorm:"not null" json:"price_premium"`
	PriceVIP     float64 `gorm:"not null" json:"price_vip"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Seats []Seat `json:"seats,omitempty" gorm:"foreignKey:LayoutID;constraint:OnDelete:CASCADE;"`
}

func (SeatLayout) TableName() string {
	return "seat_layouts"
}

// PriceFor returns the layout's price for a seat type. Unavailable seats
// carry no price.
func (l *SeatLayout) PriceFor(t SeatType) float64 {
	switch t {
	case SeatTypeRegular:
		return l.PriceRegular
	case SeatTypePremium:
		return l.PricePremium
	case SeatTypeVIP:
		return l.PriceVIP
	default:
		return 0
	}
}

// Seat is static reference data within a layout: looked up by id when a
// selection request is mapped to seat metadata and price. Never mutated by
// the booking flow.
type Seat struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LayoutID uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_layout_seat_number" json:"layout_id"`
	Number   string    `gorm:"not null;uniqueIndex:idx_layout_seat_number" json:"number"`
	Type     SeatType  `gorm:"type:varchar(20);not null" json:"type"`
	Row      int       `gorm:"not null" json:"row"`
	Col      int       `gorm:"not null" json:"col"`
	Price    float64   `gorm:"not null" json:"price"`

	CreatedAt time.Time `json:"created_at"`
}

func (Seat) TableName() string {
	return "seats"
}

func (s *Seat) IsBookable() bool {
	return s.Type != SeatTypeUnavailable
}

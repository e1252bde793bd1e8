package shows

import (
	"time"

	"github.com/google/uuid"

	"cinebook/internal/layouts"
)

// SelectedSeat echoes one held seat back to the client with the price
// captured at hold time.
type SelectedSeat struct {
	SeatID     uuid.UUID        `json:"seat_id"`
	SeatNumber string           `json:"seat_number"`
	SeatType   layouts.SeatType `json:"seat_type"`
	Price      float64          `json:"price"`
}

type SelectSeatsResponse struct {
	ShowID      uuid.UUID      `json:"show_id"`
	Seats       []SelectedSeat `json:"seats"`
	TotalAmount float64        `json:"total_amount"`
	HeldAt      time.Time      `json:"held_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
}

// SeatMapEntry is one seat in the live availability view.
type SeatMapEntry struct {
	SeatID     uuid.UUID        `json:"seat_id"`
	SeatNumber string           `json:"seat_number"`
	SeatType   layouts.SeatType `json:"seat_type"`
	Row        int              `json:"row"`
	Col        int              `json:"col"`
	Price      float64          `json:"price"`
	Status     string           `json:"status"` // available | pending | booked | unavailable
}

type SeatMapResponse struct {
	ShowID uuid.UUID      `json:"show_id"`
	Seats  []SeatMapEntry `json:"seats"`
}

package shows

import "time"

type CreateShowRequest struct {
	ScreenID             string    `json:"screen_id" binding:"required,uuid"`
	MovieID              string    `json:"movie_id" binding:"required,uuid"`
	MovieTitle           string    `json:"movie_title" binding:"required,min=1,max=200"`
	Language             string    `json:"language" binding:"omitempty,max=40"`
	StartTime            time.Time `json:"start_time" binding:"required"`
	EndTime              time.Time `json:"end_time" binding:"required"`
	PriceOverridePercent int       `json:"price_override_percent" binding:"omitempty,min=1,max=500"`
}

type UpdateShowStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=SCHEDULED RUNNING COMPLETED CANCELLED"`
}

// SelectSeatsRequest is the hold request: all seats are claimed
// atomically or none are.
type SelectSeatsRequest struct {
	SeatIDs []string `json:"seat_ids" binding:"required,min=1,dive,uuid"`
}

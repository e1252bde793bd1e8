package bookings

// CreateBookingRequest turns the caller's pending holds on a show into
// a booking awaiting payment.
type CreateBookingRequest struct {
	ShowID string `json:"show_id" binding:"required,uuid"`
}

package layouts

type SeatDefinition struct {
	Number string `json:"number" binding:"required"`
	Type   string `json:"type" binding:"required,oneof=REGULAR PREMIUM VIP UNAVAILABLE"`
	Row    int    `json:"row" binding:"min=0"`
	Col    int    `json:"col" binding:"min=0"`
}

type CreateLayoutRequest struct {
	Name         string           `json:"name" binding:"required"`
	RowCount     int              `json:"row_count" binding:"required,min=1,max=100"`
	ColumnCount  int              `json:"column_count" binding:"required,min=1,max=100"`
	PriceRegular float64          `json:"price_regular" binding:"min=0"`
	PricePremium float64          `json:"price_premium" binding:"min=0"`
	PriceVIP     float64          `json:"price_vip" binding:"min=0"`
	Seats        []SeatDefinition `json:"seats" binding:"required,min=1,dive"`
}

// ReplaceSeatsRequest swaps the full seat set of a layout. Partial edits are
// not supported; the swap re-validates the layout invariants.
type ReplaceSeatsRequest struct {
	Seats []SeatDefinition `json:"seats" binding:"required,min=1,dive"`
}

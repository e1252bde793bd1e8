package theaters

type CreateTheaterRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=120"`
	City    string `json:"city" binding:"required,min=2,max=80"`
	Address string `json:"address" binding:"omitempty,max=255"`
}

type CreateScreenRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=60"`
	LayoutID string `json:"layout_id" binding:"required,uuid"`
}

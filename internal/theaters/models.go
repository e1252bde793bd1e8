package theaters

import (
	"time"

	"github.com/google/uuid"
)

// Theater groups a vendor's screens at one physical location.
type Theater struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VendorID uuid.UUID `gorm:"type:uuid;index;not null" json:"vendor_id"`
	Name     string    `gorm:"not null" json:"name"`
	City     string    `gorm:"not null;index" json:"city"`
	Address  string    `json:"address"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Screens []Screen `json:"screens,omitempty" gorm:"foreignKey:TheaterID;constraint:OnDelete:CASCADE;"`
}

func (Theater) TableName() string {
	return "theaters"
}

// Screen references one theater and one seat layout. Its filled_times slots
// give show-level exclusivity on the screen's timeline; seat-level
// exclusivity lives on the show aggregate.
type Screen struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TheaterID uuid.UUID `gorm:"type:uuid;index;not null" json:"theater_id"`
	LayoutID  uuid.UUID `gorm:"type:uuid;not null" json:"layout_id"`
	Name      string    `gorm:"not null" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FilledTimes []FilledTime `json:"filled_times,omitempty" gorm:"foreignKey:ScreenID;constraint:OnDelete:CASCADE;"`
}

func (Screen) TableName() string {
	return "screens"
}

// FilledTime is one occupied slot on a screen's timeline.
type FilledTime struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ScreenID  uuid.UUID `gorm:"type:uuid;index;not null" json:"screen_id"`
	ShowID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"show_id"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	CreatedAt time.Time `json:"created_at"`
}

func (FilledTime) TableName() string {
	return "filled_times"
}

// Overlaps reports whether the slot intersects [start, end).
func (f *FilledTime) Overlaps(start, end time.Time) bool {
	return f.StartTime.Before(end) && start.Before(f.EndTime)
}

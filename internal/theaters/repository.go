package theaters

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSlotConflict means the requested window overlaps a slot already on
// the screen's timeline.
var ErrSlotConflict = errors.New("screen slot conflict")

type Repository interface {
	CreateTheater(ctx context.Context, theater *Theater) error
	GetTheaterByID(ctx context.Context, id uuid.UUID) (*Theater, error)
	ListTheatersByVendor(ctx context.Context, vendorID uuid.UUID) ([]Theater, error)
	ListTheatersByCity(ctx context.Context, city string) ([]Theater, error)

	CreateScreen(ctx context.Context, screen *Screen) error
	GetScreenByID(ctx context.Context, id uuid.UUID) (*Screen, error)
	ListScreensByTheater(ctx context.Context, theaterID uuid.UUID) ([]Screen, error)

	// ReserveSlot claims slot's window on its screen's timeline. The
	// conflict check and the insert run in one transaction holding the
	// screen row, so concurrent reservations for the same screen
	// serialize. Returns ErrSlotConflict on overlap and
	// gorm.ErrRecordNotFound when the screen does not exist.
	ReserveSlot(ctx context.Context, slot *FilledTime) error
	RemoveFilledTimeByShow(ctx context.Context, showID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateTheater(ctx context.Context, theater *Theater) error {
	return r.db.WithContext(ctx).Create(theater).Error
}

func (r *repository) GetTheaterByID(ctx context.Context, id uuid.UUID) (*Theater, error) {
	var theater Theater
	err := r.db.WithContext(ctx).
		Preload("Screens").
		Where("id = ?", id).
		First(&theater).Error
	if err != nil {
		return nil, err
	}
	return &theater, nil
}

func (r *repository) ListTheatersByVendor(ctx context.Context, vendorID uuid.UUID) ([]Theater, error) {
	var theaters []Theater
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&theaters).Error
	return theaters, err
}

func (r *repository) ListTheatersByCity(ctx context.Context, city string) ([]Theater, error) {
	var theaters []Theater
	err := r.db.WithContext(ctx).
		Where("LOWER(city) = LOWER(?)", city).
		Order("name ASC").
		Find(&theaters).Error
	return theaters, err
}

func (r *repository) CreateScreen(ctx context.Context, screen *Screen) error {
	return r.db.WithContext(ctx).Create(screen).Error
}

func (r *repository) GetScreenByID(ctx context.Context, id uuid.UUID) (*Screen, error) {
	var screen Screen
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&screen).Error
	if err != nil {
		return nil, err
	}
	return &screen, nil
}

func (r *repository) ListScreensByTheater(ctx context.Context, theaterID uuid.UUID) ([]Screen, error) {
	var screens []Screen
	err := r.db.WithContext(ctx).
		Where("theater_id = ?", theaterID).
		Order("name ASC").
		Find(&screens).Error
	return screens, err
}

func (r *repository) ReserveSlot(ctx context.Context, slot *FilledTime) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the screen row so two reservations for the same screen
		// cannot both pass the overlap check.
		var screen Screen
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", slot.ScreenID).
			First(&screen).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return gorm.ErrRecordNotFound
			}
			return fmt.Errorf("failed to lock screen: %w", err)
		}

		// Half-open interval [start, end) against the existing slots.
		var count int64
		err = tx.Model(&FilledTime{}).
			Where("screen_id = ? AND start_time < ? AND end_time > ?",
				slot.ScreenID, slot.EndTime, slot.StartTime).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check screen availability: %w", err)
		}
		if count > 0 {
			return ErrSlotConflict
		}

		return tx.Create(slot).Error
	})
}

func (r *repository) RemoveFilledTimeByShow(ctx context.Context, showID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("show_id = ?", showID).
		Delete(&FilledTime{}).Error
}

package layouts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, layout *SeatLayout) error
	GetByID(ctx context.Context, id uuid.UUID) (*SeatLayout, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]SeatLayout, error)
	ReplaceSeats(ctx context.Context, layoutID uuid.UUID, seats []Seat, capacity int) error
	GetSeatsByIDs(ctx context.Context, layoutID uuid.UUID, seatIDs []uuid.UUID) ([]Seat, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, layout *SeatLayout) error {
	// Layout and its seat set land together or not at all.
	return r.db.WithContext(ctx).Create(layout).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*SeatLayout, error) {
	var layout SeatLayout
	err := r.db.WithContext(ctx).
		Preload("Seats", func(db *gorm.DB) *gorm.DB {
			return db.Order("row ASC, col ASC")
		}).
		First(&layout, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &layout, nil
}

func (r *repository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]SeatLayout, error) {
	var layouts []SeatLayout
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&layouts).Error
	return layouts, err
}

// ReplaceSeats swaps the whole seat set in one transaction.
func (r *repository) ReplaceSeats(ctx context.Context, layoutID uuid.UUID, seats []Seat, capacity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&Seat{}, "layout_id = ?", layoutID).Error; err != nil {
			return err
		}
		if err := tx.Create(&seats).Error; err != nil {
			return err
		}
		return tx.Model(&SeatLayout{}).
			Where("id = ?", layoutID).
			Update("capacity", capacity).Error
	})
}

func (r *repository) GetSeatsByIDs(ctx context.Context, layoutID uuid.UUID, seatIDs []uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("layout_id = ? AND id IN ?", layoutID, seatIDs).
		Find(&seats).Error
	return seats, err
}

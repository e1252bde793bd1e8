package shows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeatConflictError reports which requested seats were already taken.
// The hold transaction writes nothing when this fires.
type SeatConflictError struct {
	SeatNumbers []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats already taken: %s", strings.Join(e.SeatNumbers, ", "))
}

type Repository interface {
	Create(ctx context.Context, show *Show) error
	GetByID(ctx context.Context, id uuid.UUID) (*Show, error)
	ListByScreen(ctx context.Context, screenID uuid.UUID) ([]Show, error)
	ListUpcomingByMovie(ctx context.Context, movieID uuid.UUID, after time.Time) ([]Show, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]Show, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status ShowStatus) error

	// HoldSeats atomically claims the given seats for a user. Inside a
	// transaction it locks the show row, re-reads the taken seat
	// numbers, and appends the new holds only when every requested seat
	// is free. A *SeatConflictError means nothing was written.
	HoldSeats(ctx context.Context, showID uuid.UUID, entries []BookedSeat) error

	// ReleaseSeats deletes specific pending holds, regardless of age.
	// Used to compensate when post-hold wiring fails.
	ReleaseSeats(ctx context.Context, showID uuid.UUID, seatNumbers []string) error

	// ReleaseExpiredHolds deletes the show's pending holds held before
	// cutoff and returns the released seats for notification fanout.
	ReleaseExpiredHolds(ctx context.Context, showID uuid.UUID, cutoff time.Time) ([]BookedSeat, error)

	// ListShowIDsWithStalePending finds shows that still carry pending
	// holds older than cutoff. Drives the safety sweep.
	ListShowIDsWithStalePending(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)

	GetBookedSeats(ctx context.Context, showID uuid.UUID) ([]BookedSeat, error)
	GetPendingSeatsForUser(ctx context.Context, showID, userID uuid.UUID) ([]BookedSeat, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, show *Show) error {
	return r.db.WithContext(ctx).Create(show).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Show, error) {
	var show Show
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&show).Error
	if err != nil {
		return nil, err
	}
	return &show, nil
}

func (r *repository) ListByScreen(ctx context.Context, screenID uuid.UUID) ([]Show, error) {
	var shows []Show
	err := r.db.WithContext(ctx).
		Where("screen_id = ?", screenID).
		Order("start_time ASC").
		Find(&shows).Error
	return shows, err
}

func (r *repository) ListUpcomingByMovie(ctx context.Context, movieID uuid.UUID, after time.Time) ([]Show, error) {
	var shows []Show
	err := r.db.WithContext(ctx).
		Where("movie_id = ? AND start_time > ? AND status = ?", movieID, after, StatusScheduled).
		Order("start_time ASC").
		Find(&shows).Error
	return shows, err
}

func (r *repository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]Show, error) {
	var shows []Show
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("start_time DESC").
		Find(&shows).Error
	return shows, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status ShowStatus) error {
	result := r.db.WithContext(ctx).
		Model(&Show{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) HoldSeats(ctx context.Context, showID uuid.UUID, entries []BookedSeat) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the show row so concurrent selections for the same
		// show serialize here.
		var show struct {
			ID     uuid.UUID `gorm:"column:id"`
			Status string    `gorm:"column:status"`
		}
		err := lockShowRow(tx, showID).First(&show).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return gorm.ErrRecordNotFound
			}
			return fmt.Errorf("failed to lock show: %w", err)
		}
		if show.Status != string(StatusScheduled) {
			return &SeatConflictError{SeatNumbers: seatNumbersOf(entries)}
		}

		// 2. Re-read taken seats under the lock.
		requested := seatNumbersOf(entries)
		var taken []string
		err = tx.Model(&BookedSeat{}).
			Where("show_id = ? AND seat_number IN ?", showID, requested).
			Pluck("seat_number", &taken).Error
		if err != nil {
			return fmt.Errorf("failed to check seat availability: %w", err)
		}
		if len(taken) > 0 {
			return &SeatConflictError{SeatNumbers: taken}
		}

		// 3. All free: append the holds in one batch. The unique index
		// on (show_id, seat_number) backstops the locked check, so a
		// duplicate key here is still a seat conflict, not a server
		// fault.
		if err := tx.Create(&entries).Error; err != nil {
			if isUniqueViolation(err) {
				return &SeatConflictError{SeatNumbers: requested}
			}
			return fmt.Errorf("failed to create seat holds: %w", err)
		}
		return nil
	})
}

// lockShowRow selects the show's id and status under FOR UPDATE so
// concurrent hold transactions for the same show serialize on it.
func lockShowRow(tx *gorm.DB, showID uuid.UUID) *gorm.DB {
	return tx.Table("shows").
		Select("id, status").
		Where("id = ?", showID).
		Clauses(clause.Locking{Strength: "UPDATE"})
}

// isUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *repository) ReleaseSeats(ctx context.Context, showID uuid.UUID, seatNumbers []string) error {
	return r.db.WithContext(ctx).
		Where("show_id = ? AND seat_number IN ? AND is_pending = true", showID, seatNumbers).
		Delete(&BookedSeat{}).Error
}

func (r *repository) ReleaseExpiredHolds(ctx context.Context, showID uuid.UUID, cutoff time.Time) ([]BookedSeat, error) {
	var released []BookedSeat
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("show_id = ? AND is_pending = true AND held_at < ?", showID, cutoff).
			Find(&released).Error
		if err != nil {
			return err
		}
		if len(released) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(released))
		for _, seat := range released {
			ids = append(ids, seat.ID)
		}
		return tx.Where("id IN ?", ids).Delete(&BookedSeat{}).Error
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

func (r *repository) ListShowIDsWithStalePending(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	var showIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&BookedSeat{}).
		Distinct("show_id").
		Where("is_pending = true AND held_at < ?", cutoff).
		Pluck("show_id", &showIDs).Error
	return showIDs, err
}

func (r *repository) GetBookedSeats(ctx context.Context, showID uuid.UUID) ([]BookedSeat, error) {
	var seats []BookedSeat
	err := r.db.WithContext(ctx).
		Where("show_id = ?", showID).
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetPendingSeatsForUser(ctx context.Context, showID, userID uuid.UUID) ([]BookedSeat, error) {
	var seats []BookedSeat
	err := r.db.WithContext(ctx).
		Where("show_id = ? AND user_id = ? AND is_pending = true", showID, userID).
		Order("seat_number ASC").
		Find(&seats).Error
	return seats, err
}

func seatNumbersOf(entries []BookedSeat) []string {
	numbers := make([]string, 0, len(entries))
	for _, e := range entries {
		numbers = append(numbers, e.SeatNumber)
	}
	return numbers
}

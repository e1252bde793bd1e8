package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// CreateBookingWithPayment writes the booking, its seat snapshots
	// and the pending payment record in one transaction.
	CreateBookingWithPayment(ctx context.Context, booking *Booking) error

	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error)

	// ConfirmBooking completes the payment and confirms the held seats
	// atomically. An unknown bookingID returns gorm.ErrRecordNotFound.
	// The conditional payment update is the idempotency gate: when the
	// payment already left PENDING the call reports confirmed=false and
	// changes nothing.
	ConfirmBooking(ctx context.Context, bookingID uuid.UUID, providerRef string) (confirmed bool, booking *Booking, err error)

	// FailBooking marks the payment failed, cancels the booking and
	// drops its still-pending seat holds. An unknown bookingID returns
	// gorm.ErrRecordNotFound.
	FailBooking(ctx context.Context, bookingID uuid.UUID, providerRef string) (*Booking, error)

	// ExpireStalePendingBookings cancels bookings whose payment never
	// arrived and whose holds are already swept.
	ExpireStalePendingBookings(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBookingWithPayment(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		payment := &Payment{
			BookingID: booking.ID,
			UserID:    booking.UserID,
			Amount:    booking.TotalAmount,
			Status:    PaymentPending,
			Provider:  "stripe",
		}
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("failed to create payment record: %w", err)
		}
		booking.Payment = payment
		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Preload("Payment").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Preload("Payment").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) ConfirmBooking(ctx context.Context, bookingID uuid.UUID, providerRef string) (bool, *Booking, error) {
	var booking *Booking
	confirmed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Load the booking and its seat snapshots. An unknown id is
		// a hard error, not a duplicate delivery.
		var b Booking
		if err := tx.Preload("Seats").Preload("Payment").
			Where("id = ?", bookingID).
			First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return gorm.ErrRecordNotFound
			}
			return fmt.Errorf("failed to load booking: %w", err)
		}

		// 2. Conditional payment transition. A replayed webhook finds
		// zero rows here and the whole call becomes a no-op.
		result := tx.Model(&Payment{}).
			Where("booking_id = ? AND status = ?", bookingID, PaymentPending).
			Updates(map[string]interface{}{
				"status":       PaymentCompleted,
				"provider_ref": providerRef,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to complete payment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		confirmed = true
		if b.Payment != nil {
			ref := providerRef
			b.Payment.Status = PaymentCompleted
			b.Payment.ProviderRef = &ref
		}

		// 3. Flip the matching pending holds to booked. Holds that
		// already expired are gone; confirming what remains is still
		// correct because the payment races the sweep, not other users.
		seatNumbers := make([]string, 0, len(b.Seats))
		for _, seat := range b.Seats {
			seatNumbers = append(seatNumbers, seat.SeatNumber)
		}
		if len(seatNumbers) > 0 {
			err := tx.Table("booked_seats").
				Where("show_id = ? AND seat_number IN ? AND is_pending = true", b.ShowID, seatNumbers).
				Update("is_pending", false).Error
			if err != nil {
				return fmt.Errorf("failed to confirm held seats: %w", err)
			}
		}

		// 4. Booking status.
		if err := tx.Model(&Booking{}).
			Where("id = ?", bookingID).
			Update("status", StatusConfirmed).Error; err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}

		b.Status = StatusConfirmed
		booking = &b
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	return confirmed, booking, nil
}

func (r *repository) FailBooking(ctx context.Context, bookingID uuid.UUID, providerRef string) (*Booking, error) {
	var booking *Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b Booking
		if err := tx.Preload("Seats").
			Where("id = ?", bookingID).
			First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return gorm.ErrRecordNotFound
			}
			return fmt.Errorf("failed to load booking: %w", err)
		}

		result := tx.Model(&Payment{}).
			Where("booking_id = ? AND status = ?", bookingID, PaymentPending).
			Updates(map[string]interface{}{
				"status":       PaymentFailed,
				"provider_ref": providerRef,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to mark payment failed: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// Already completed or already failed.
			return nil
		}

		if err := tx.Model(&Booking{}).
			Where("id = ?", bookingID).
			Update("status", StatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		// Free the seats right away instead of waiting out the TTL.
		seatNumbers := make([]string, 0, len(b.Seats))
		for _, seat := range b.Seats {
			seatNumbers = append(seatNumbers, seat.SeatNumber)
		}
		if len(seatNumbers) > 0 {
			err := tx.Exec(
				"DELETE FROM booked_seats WHERE show_id = ? AND seat_number IN ? AND is_pending = true",
				b.ShowID, seatNumbers,
			).Error
			if err != nil {
				return fmt.Errorf("failed to release held seats: %w", err)
			}
		}

		b.Status = StatusCancelled
		booking = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *repository) ExpireStalePendingBookings(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("status = ? AND created_at < ?", StatusPending, cutoff).
		Update("status", StatusExpired)
	return result.RowsAffected, result.Error
}

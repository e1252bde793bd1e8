package bookings

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cinebook/internal/notifications"
	"cinebook/internal/realtime"
	"cinebook/internal/shared/constants"
	"cinebook/internal/shared/utils/apperror"
	"cinebook/internal/shows"
	"cinebook/internal/users"
	"cinebook/pkg/cache"
	"cinebook/pkg/logger"
)

// Loyalty points granted per confirmed seat.
const loyaltyPointsPerSeat = 10

type Service interface {
	CreateBooking(ctx context.Context, userID string, req CreateBookingRequest) (*Booking, error)
	GetBooking(ctx context.Context, userID, bookingID string) (*Booking, error)
	ListMyBookings(ctx context.Context, userID string) ([]Booking, error)

	// ConfirmBooking reconciles a successful payment. Safe to call any
	// number of times for the same booking: only the first call that
	// wins the payment transition runs the side effects.
	ConfirmBooking(ctx context.Context, bookingID uuid.UUID, providerRef string) error

	// FailBooking reconciles a failed or abandoned payment.
	FailBooking(ctx context.Context, bookingID uuid.UUID, providerRef string) error
}

type service struct {
	repo      Repository
	shows     shows.Service
	users     users.Repository
	notifier  notifications.Service
	publisher realtime.Publisher
	cache     cache.Service
	log       *logger.Logger
}

func NewService(
	repo Repository,
	showSvc shows.Service,
	userRepo users.Repository,
	notifier notifications.Service,
	publisher realtime.Publisher,
	cacheService cache.Service,
	log *logger.Logger,
) Service {
	return &service{
		repo:      repo,
		shows:     showSvc,
		users:     userRepo,
		notifier:  notifier,
		publisher: publisher,
		cache:     cacheService,
		log:       log,
	}
}

func (s *service) CreateBooking(ctx context.Context, userID string, req CreateBookingRequest) (*Booking, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperror.BadRequest("invalid user id")
	}

	show, err := s.shows.GetShow(ctx, req.ShowID)
	if err != nil {
		return nil, err
	}

	held, err := s.shows.GetUserPendingSeats(ctx, userID, req.ShowID)
	if err != nil {
		return nil, err
	}
	if len(held) == 0 {
		return nil, apperror.Conflict("no held seats for this show, select seats first")
	}

	booking := &Booking{
		UserID:     uid,
		ShowID:     show.ID,
		VendorID:   show.VendorID,
		MovieTitle: show.MovieTitle,
		Status:     StatusPending,
	}
	for _, seat := range held {
		booking.Seats = append(booking.Seats, BookingSeat{
			SeatNumber: seat.SeatNumber,
			SeatType:   seat.SeatType,
			Price:      seat.Price,
		})
		booking.TotalAmount += seat.Price
	}

	if err := s.repo.CreateBookingWithPayment(ctx, booking); err != nil {
		return nil, apperror.Internal("failed to create booking", err)
	}
	return booking, nil
}

func (s *service) GetBooking(ctx context.Context, userID, bookingID string) (*Booking, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.BadRequest("invalid booking id")
	}
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("booking not found")
		}
		return nil, apperror.Internal("failed to fetch booking", err)
	}
	if booking.UserID.String() != userID {
		return nil, apperror.New(http.StatusForbidden, "booking belongs to another user")
	}
	return booking, nil
}

func (s *service) ListMyBookings(ctx context.Context, userID string) ([]Booking, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperror.BadRequest("invalid user id")
	}
	bookings, err := s.repo.ListByUser(ctx, uid)
	if err != nil {
		return nil, apperror.Internal("failed to list bookings", err)
	}
	return bookings, nil
}

func (s *service) ConfirmBooking(ctx context.Context, bookingID uuid.UUID, providerRef string) error {
	confirmed, booking, err := s.repo.ConfirmBooking(ctx, bookingID, providerRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("booking not found")
		}
		return apperror.Internal("failed to confirm booking", err)
	}
	if !confirmed {
		// Duplicate delivery: first one already did the work.
		return nil
	}

	s.log.LogBookingConfirmed(ctx, booking.ID.String(), booking.ShowID.String(), booking.UserID.String())

	// Everything below is best effort. The booking is confirmed; a
	// failed side effect is logged, never surfaced to the gateway.
	points := len(booking.Seats) * loyaltyPointsPerSeat
	if err := s.users.IncrementLoyaltyPoints(ctx, booking.UserID, points); err != nil {
		s.log.ErrorWithContext(ctx, "failed to award loyalty points", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
			"points":     points,
		})
	}

	seatNumbers := make([]string, 0, len(booking.Seats))
	for _, seat := range booking.Seats {
		seatNumbers = append(seatNumbers, seat.SeatNumber)
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, constants.BuildShowSeatsKey(booking.ShowID.String())); err != nil {
			s.log.ErrorWithContext(ctx, "failed to invalidate seat cache", err, nil)
		}
	}
	if err := s.publisher.PublishSeatUpdate(ctx, booking.ShowID, seatNumbers, realtime.SeatStatusBooked); err != nil {
		s.log.ErrorWithContext(ctx, "failed to publish booked seats", err, nil)
	}

	s.notifier.NotifyBookingConfirmed(ctx, booking.UserID, booking.VendorID, booking.ID, booking.MovieTitle, seatNumbers)

	return nil
}

func (s *service) FailBooking(ctx context.Context, bookingID uuid.UUID, providerRef string) error {
	booking, err := s.repo.FailBooking(ctx, bookingID, providerRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("booking not found")
		}
		return apperror.Internal("failed to record payment failure", err)
	}
	if booking == nil {
		// Payment already left PENDING, nothing to undo.
		return nil
	}

	seatNumbers := make([]string, 0, len(booking.Seats))
	for _, seat := range booking.Seats {
		seatNumbers = append(seatNumbers, seat.SeatNumber)
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, constants.BuildShowSeatsKey(booking.ShowID.String())); err != nil {
			s.log.ErrorWithContext(ctx, "failed to invalidate seat cache", err, nil)
		}
	}
	if err := s.publisher.PublishSeatUpdate(ctx, booking.ShowID, seatNumbers, realtime.SeatStatusAvailable); err != nil {
		s.log.ErrorWithContext(ctx, "failed to publish released seats", err, nil)
	}
	return nil
}

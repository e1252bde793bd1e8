package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"cinebook/internal/realtime"
	"cinebook/pkg/logger"
)

// Service composes and dispatches in-app notifications. When a Kafka
// producer is configured, notifications ride the topic and the consumer
// delivers them; otherwise they go straight to the realtime publisher.
// Either way dispatch is best effort and never fails the caller's flow.
type Service interface {
	NotifyBookingConfirmed(ctx context.Context, userID, vendorID, bookingID uuid.UUID, movieTitle string, seatNumbers []string)
	NotifySeatsReleased(ctx context.Context, userID, showID uuid.UUID, movieTitle string, seatNumbers []string)
}

type service struct {
	producer  Producer // nil when Kafka is disabled
	publisher realtime.Publisher
	log       *logger.Logger
}

func NewService(producer Producer, publisher realtime.Publisher, log *logger.Logger) Service {
	return &service{producer: producer, publisher: publisher, log: log}
}

func (s *service) NotifyBookingConfirmed(ctx context.Context, userID, vendorID, bookingID uuid.UUID, movieTitle string, seatNumbers []string) {
	seats := strings.Join(seatNumbers, ", ")

	userNote := NewNotificationBuilder().
		WithType(NotificationTypeBookingConfirmed).
		WithUser(userID).
		WithTitle("Booking confirmed").
		WithDescription(fmt.Sprintf("Your seats %s for %s are confirmed.", seats, movieTitle)).
		WithBooking(bookingID).
		Build()

	vendorNote := NewNotificationBuilder().
		WithType(NotificationTypeBookingConfirmed).
		WithUser(vendorID).
		WithTitle("New booking").
		WithDescription(fmt.Sprintf("Seats %s booked for %s.", seats, movieTitle)).
		WithBooking(bookingID).
		Build()

	adminNote := NewNotificationBuilder().
		WithType(NotificationTypeBookingConfirmed).
		WithTitle("Booking completed").
		WithDescription(fmt.Sprintf("Booking %s completed for %s.", bookingID, movieTitle)).
		WithBooking(bookingID).
		Global().
		Build()

	s.dispatch(ctx, userNote, vendorNote, adminNote)
}

func (s *service) NotifySeatsReleased(ctx context.Context, userID, showID uuid.UUID, movieTitle string, seatNumbers []string) {
	note := NewNotificationBuilder().
		WithType(NotificationTypeSeatsReleased).
		WithUser(userID).
		WithTitle("Seat hold expired").
		WithDescription(fmt.Sprintf("Your hold on seats %s for %s expired and the seats were released.", strings.Join(seatNumbers, ", "), movieTitle)).
		Build()

	s.dispatch(ctx, note)
}

func (s *service) dispatch(ctx context.Context, notes ...*Notification) {
	if s.producer != nil {
		err := s.producer.PublishBatch(ctx, notes)
		if err == nil {
			return
		}
		s.log.ErrorWithContext(ctx, "failed to queue notifications, falling back to direct delivery", err, nil)
	}

	for _, note := range notes {
		if err := s.publisher.PublishNotification(ctx, note.UserID, note); err != nil {
			s.log.ErrorWithContext(ctx, "failed to deliver notification", err, map[string]interface{}{
				"notification_id": note.ID.String(),
			})
		}
	}
}

// Package realtime pushes seat and notification events to connected
// clients over Pusher channels. Browsers watching a show's seat map
// subscribe to the show channel and repaint on every seat-update event.
package realtime

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"cinebook/internal/shared/config"
	"cinebook/pkg/logger"

	pusher "github.com/pusher/pusher-http-go/v5"
)

// SeatStatus is the client-facing state carried on seat update events.
type SeatStatus string

const (
	SeatStatusPending   SeatStatus = "pending"
	SeatStatusBooked    SeatStatus = "booked"
	SeatStatusAvailable SeatStatus = "available"
)

const (
	seatUpdateEvent   = "seat-update"
	notificationEvent = "notification"
)

// Publisher fans realtime events out to clients. Delivery is best
// effort; callers never fail a booking flow on a publish error.
type Publisher interface {
	PublishSeatUpdate(ctx context.Context, showID uuid.UUID, seatNumbers []string, status SeatStatus) error
	PublishNotification(ctx context.Context, userID uuid.UUID, payload any) error
}

// SeatUpdatePayload is the wire shape of a seat-update event.
type SeatUpdatePayload struct {
	ShowID      string   `json:"show_id"`
	SeatNumbers []string `json:"seat_numbers"`
	Status      string   `json:"status"`
}

type pusherPublisher struct {
	client *pusher.Client
	log    *logger.Logger
}

// NewPusherPublisher builds the production publisher from config.
func NewPusherPublisher(cfg config.PusherConfig, log *logger.Logger) Publisher {
	client := &pusher.Client{
		AppID:   cfg.AppID,
		Key:     cfg.Key,
		Secret:  cfg.Secret,
		Cluster: cfg.Cluster,
		Secure:  true,
	}
	return &pusherPublisher{client: client, log: log}
}

func showChannel(showID uuid.UUID) string {
	return fmt.Sprintf("show-%s", showID)
}

func userChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user-%s", userID)
}

func (p *pusherPublisher) PublishSeatUpdate(ctx context.Context, showID uuid.UUID, seatNumbers []string, status SeatStatus) error {
	payload := SeatUpdatePayload{
		ShowID:      showID.String(),
		SeatNumbers: seatNumbers,
		Status:      string(status),
	}
	if err := p.client.Trigger(showChannel(showID), seatUpdateEvent, payload); err != nil {
		p.log.ErrorWithContext(ctx, "failed to publish seat update", err, map[string]interface{}{
			"show_id": showID.String(),
			"status":  string(status),
		})
		return err
	}
	return nil
}

func (p *pusherPublisher) PublishNotification(ctx context.Context, userID uuid.UUID, payload any) error {
	if err := p.client.Trigger(userChannel(userID), notificationEvent, payload); err != nil {
		p.log.ErrorWithContext(ctx, "failed to publish notification", err, map[string]interface{}{
			"user_id": userID.String(),
		})
		return err
	}
	return nil
}

// NoopPublisher drops every event. Used when Pusher is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishSeatUpdate(ctx context.Context, showID uuid.UUID, seatNumbers []string, status SeatStatus) error {
	return nil
}

func (NoopPublisher) PublishNotification(ctx context.Context, userID uuid.UUID, payload any) error {
	return nil
}

package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotificationTypeBookingCancelled NotificationType = "BOOKING_CANCELLED"
	NotificationTypeSeatsReleased    NotificationType = "SEATS_RELEASED"
	NotificationTypeAnnouncement     NotificationType = "ANNOUNCEMENT"
)

// Notification is the in-app notification payload delivered to clients.
// Field names follow the document shape the web and mobile clients
// already consume.
type Notification struct {
	ID          uuid.UUID        `json:"_id"`
	UserID      uuid.UUID        `json:"userId"`
	Title       string           `json:"title"`
	Type        NotificationType `json:"type"`
	Description string           `json:"description"`
	BookingID   *uuid.UUID       `json:"bookingId,omitempty"`
	IsRead      bool             `json:"isRead"`
	IsGlobal    bool             `json:"isGlobal"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

func FromJSON(data []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// PartitionKey routes all of one user's notifications to the same
// partition so they arrive in order.
func (n *Notification) PartitionKey() string {
	if n.IsGlobal {
		return "global"
	}
	return n.UserID.String()
}

type NotificationBuilder struct {
	notification *Notification
}

func NewNotificationBuilder() *NotificationBuilder {
	now := time.Now()
	return &NotificationBuilder{
		notification: &Notification{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (nb *NotificationBuilder) WithType(t NotificationType) *NotificationBuilder {
	nb.notification.Type = t
	return nb
}

func (nb *NotificationBuilder) WithUser(userID uuid.UUID) *NotificationBuilder {
	nb.notification.UserID = userID
	return nb
}

func (nb *NotificationBuilder) WithTitle(title string) *NotificationBuilder {
	nb.notification.Title = title
	return nb
}

func (nb *NotificationBuilder) WithDescription(description string) *NotificationBuilder {
	nb.notification.Description = description
	return nb
}

func (nb *NotificationBuilder) WithBooking(bookingID uuid.UUID) *NotificationBuilder {
	nb.notification.BookingID = &bookingID
	return nb
}

func (nb *NotificationBuilder) Global() *NotificationBuilder {
	nb.notification.IsGlobal = true
	return nb
}

func (nb *NotificationBuilder) Build() *Notification {
	return nb.notification
}

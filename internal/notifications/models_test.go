package notifications

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotification_JSONRoundTrip(t *testing.T) {
	bookingID := uuid.New()
	note := NewNotificationBuilder().
		WithType(NotificationTypeBookingConfirmed).
		WithUser(uuid.New()).
		WithTitle("Booking Confirmed").
		WithDescription("Your seats for Dune are booked").
		WithBooking(bookingID).
		Build()

	data, err := note.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"bookingId"`)

	decoded, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, note.ID, decoded.ID)
	assert.Equal(t, NotificationTypeBookingConfirmed, decoded.Type)
	require.NotNil(t, decoded.BookingID)
	assert.Equal(t, bookingID, *decoded.BookingID)
	assert.False(t, decoded.IsGlobal)
}

func TestPartitionKey_GroupsByUser(t *testing.T) {
	userID := uuid.New()
	personal := NewNotificationBuilder().WithUser(userID).Build()
	assert.Equal(t, userID.String(), personal.PartitionKey())

	global := NewNotificationBuilder().WithType(NotificationTypeAnnouncement).Global().Build()
	assert.Equal(t, "global", global.PartitionKey())
}

func TestFromJSON_RejectsMalformedPayload(t *testing.T) {
	_, err := FromJSON([]byte("{not json"))
	assert.Error(t, err)
}

package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cinebook/internal/layouts"
	"cinebook/internal/realtime"
	"cinebook/internal/shows"
	"cinebook/internal/users"
	"cinebook/pkg/logger"
)

// fakeBookingRepository mirrors the conditional payment transition the
// SQL layer provides: only one caller ever observes PENDING->COMPLETED.
type fakeBookingRepository struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*Booking
}

func newFakeBookingRepository() *fakeBookingRepository {
	return &fakeBookingRepository{bookings: make(map[uuid.UUID]*Booking)}
}

func (f *fakeBookingRepository) CreateBookingWithPayment(ctx context.Context, booking *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.Payment = &Payment{
		ID:        uuid.New(),
		BookingID: booking.ID,
		UserID:    booking.UserID,
		Amount:    booking.TotalAmount,
		Status:    PaymentPending,
		Provider:  "stripe",
	}
	f.bookings[booking.ID] = booking
	return nil
}

func (f *fakeBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return booking, nil
}

func (f *fakeBookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (f *fakeBookingRepository) ConfirmBooking(ctx context.Context, bookingID uuid.UUID, providerRef string) (bool, *Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingID]
	if !ok {
		return false, nil, gorm.ErrRecordNotFound
	}
	if booking.Payment.Status != PaymentPending {
		return false, nil, nil
	}
	booking.Payment.Status = PaymentCompleted
	booking.Payment.ProviderRef = &providerRef
	booking.Status = StatusConfirmed
	return true, booking, nil
}

func (f *fakeBookingRepository) FailBooking(ctx context.Context, bookingID uuid.UUID, providerRef string) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if booking.Payment.Status != PaymentPending {
		return nil, nil
	}
	booking.Payment.Status = PaymentFailed
	booking.Payment.ProviderRef = &providerRef
	booking.Status = StatusCancelled
	return booking, nil
}

func (f *fakeBookingRepository) ExpireStalePendingBookings(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// fakeShowService serves one show and a fixed set of pending holds.
type fakeShowService struct {
	shows.Service
	show    *shows.Show
	pending []shows.BookedSeat
}

func (f *fakeShowService) GetShow(ctx context.Context, showID string) (*shows.Show, error) {
	return f.show, nil
}

func (f *fakeShowService) GetUserPendingSeats(ctx context.Context, userID, showID string) ([]shows.BookedSeat, error) {
	return f.pending, nil
}

// fakeUserRepository counts loyalty grants.
type fakeUserRepository struct {
	users.Repository
	mu     sync.Mutex
	grants map[uuid.UUID]int
	calls  int
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{grants: make(map[uuid.UUID]int)}
}

func (f *fakeUserRepository) IncrementLoyaltyPoints(ctx context.Context, id uuid.UUID, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants[id] += points
	f.calls++
	return nil
}

// fakeNotifier records fanout calls.
type fakeNotifier struct {
	mu        sync.Mutex
	confirmed int
	released  int
}

func (f *fakeNotifier) NotifyBookingConfirmed(ctx context.Context, userID, vendorID, bookingID uuid.UUID, movieTitle string, seatNumbers []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed++
}

func (f *fakeNotifier) NotifySeatsReleased(ctx context.Context, userID, showID uuid.UUID, movieTitle string, seatNumbers []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
}

// fakeSeatPublisher records seat updates.
type fakeSeatPublisher struct {
	mu     sync.Mutex
	booked [][]string
	freed  [][]string
}

func (f *fakeSeatPublisher) PublishSeatUpdate(ctx context.Context, showID uuid.UUID, seatNumbers []string, status realtime.SeatStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch status {
	case realtime.SeatStatusBooked:
		f.booked = append(f.booked, seatNumbers)
	case realtime.SeatStatusAvailable:
		f.freed = append(f.freed, seatNumbers)
	}
	return nil
}

func (f *fakeSeatPublisher) PublishNotification(ctx context.Context, userID uuid.UUID, payload any) error {
	return nil
}

type bookingTestEnv struct {
	repo      *fakeBookingRepository
	users     *fakeUserRepository
	notifier  *fakeNotifier
	publisher *fakeSeatPublisher
	service   Service
	show      *shows.Show
	userID    uuid.UUID
}

func newBookingTestEnv(t *testing.T, pendingSeats int) *bookingTestEnv {
	t.Helper()

	userID := uuid.New()
	show := &shows.Show{
		ID:         uuid.New(),
		ScreenID:   uuid.New(),
		VendorID:   uuid.New(),
		MovieID:    uuid.New(),
		MovieTitle: "Dune",
		StartTime:  time.Now().Add(2 * time.Hour),
		EndTime:    time.Now().Add(5 * time.Hour),
		Status:     shows.StatusScheduled,
	}

	var pending []shows.BookedSeat
	numbers := []string{"C1", "C2", "C3"}
	for i := 0; i < pendingSeats; i++ {
		pending = append(pending, shows.BookedSeat{
			ID:         uuid.New(),
			ShowID:     show.ID,
			SeatNumber: numbers[i],
			SeatID:     uuid.New(),
			UserID:     userID,
			SeatType:   layouts.SeatTypeRegular,
			Price:      200,
			IsPending:  true,
			HeldAt:     time.Now(),
		})
	}

	repo := newFakeBookingRepository()
	userRepo := newFakeUserRepository()
	notifier := &fakeNotifier{}
	publisher := &fakeSeatPublisher{}

	service := NewService(
		repo,
		&fakeShowService{show: show, pending: pending},
		userRepo,
		notifier,
		publisher,
		nil,
		logger.GetDefault(),
	)

	return &bookingTestEnv{
		repo:      repo,
		users:     userRepo,
		notifier:  notifier,
		publisher: publisher,
		service:   service,
		show:      show,
		userID:    userID,
	}
}

func TestCreateBooking_FromPendingHolds(t *testing.T) {
	env := newBookingTestEnv(t, 2)

	booking, err := env.service.CreateBooking(context.Background(), env.userID.String(), CreateBookingRequest{
		ShowID: env.show.ID.String(),
	})

	require.NoError(t, err)
	assert.Equal(t, StatusPending, booking.Status)
	assert.Equal(t, 400.0, booking.TotalAmount)
	assert.Len(t, booking.Seats, 2)
	require.NotNil(t, booking.Payment)
	assert.Equal(t, PaymentPending, booking.Payment.Status)
}

func TestCreateBooking_NoHolds(t *testing.T) {
	env := newBookingTestEnv(t, 0)

	_, err := env.service.CreateBooking(context.Background(), env.userID.String(), CreateBookingRequest{
		ShowID: env.show.ID.String(),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "select seats first")
}

func TestConfirmBooking_RunsSideEffectsOnce(t *testing.T) {
	env := newBookingTestEnv(t, 2)
	booking, err := env.service.CreateBooking(context.Background(), env.userID.String(), CreateBookingRequest{
		ShowID: env.show.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, env.service.ConfirmBooking(context.Background(), booking.ID, "cs_test_123"))

	assert.Equal(t, StatusConfirmed, booking.Status)
	assert.Equal(t, PaymentCompleted, booking.Payment.Status)
	require.NotNil(t, booking.Payment.ProviderRef)
	assert.Equal(t, "cs_test_123", *booking.Payment.ProviderRef)
	assert.Equal(t, 2*loyaltyPointsPerSeat, env.users.grants[env.userID])
	assert.Equal(t, 1, env.notifier.confirmed)
	require.Len(t, env.publisher.booked, 1)
	assert.ElementsMatch(t, []string{"C1", "C2"}, env.publisher.booked[0])
}

func TestConfirmBooking_DuplicateDeliveryIsNoOp(t *testing.T) {
	env := newBookingTestEnv(t, 2)
	booking, err := env.service.CreateBooking(context.Background(), env.userID.String(), CreateBookingRequest{
		ShowID: env.show.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, env.service.ConfirmBooking(context.Background(), booking.ID, "cs_test_123"))
	require.NoError(t, env.service.ConfirmBooking(context.Background(), booking.ID, "cs_test_123"))
	require.NoError(t, env.service.ConfirmBooking(context.Background(), booking.ID, "cs_test_456"))

	assert.Equal(t, 1, env.users.calls)
	assert.Equal(t, 2*loyaltyPointsPerSeat, env.users.grants[env.userID])
	assert.Equal(t, 1, env.notifier.confirmed)
	assert.Len(t, env.publisher.booked, 1)
	// The first delivery's reference sticks.
	assert.Equal(t, "cs_test_123", *booking.Payment.ProviderRef)
}

func TestConfirmBooking_ConcurrentDeliveries(t *testing.T) {
	env := newBookingTestEnv(t, 1)
	booking, err := env.service.CreateBooking(context.Background(), env.userID.String(), CreateBookingRequest{
		ShowID: env.show.ID.String(),
	})
	require.NoError(t, err)

	const deliveries = 8
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = env.service.ConfirmBooking(context.Background(), booking.ID, "cs_test_123")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, env.users.calls)
	assert.Equal(t, 1, env.notifier.confirmed)
	assert.Len(t, env.publisher.booked, 1)
}

func TestConfirmBooking_UnknownBooking(t *testing.T) {
	env := newBookingTestEnv(t, 1)

	err := env.service.ConfirmBooking(context.Background(), uuid.New(), "cs_test_123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFailBooking_CancelsAndFreesSeats(t *testing.T) {
	env := newBookingTestEnv(t, 2)
	booking, err := env.service.CreateBooking(context.Background(), env.userID.String(), CreateBookingRequest{
		ShowID: env.show.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, env.service.FailBooking(context.Background(), booking.ID, "cs_test_123"))

	assert.Equal(t, StatusCancelled, booking.Status)
	assert.Equal(t, PaymentFailed, booking.Payment.Status)
	require.Len(t, env.publisher.freed, 1)
	assert.ElementsMatch(t, []string{"C1", "C2"}, env.publisher.freed[0])
	assert.Zero(t, env.users.calls)
}

func TestFailBooking_AfterConfirmationIsNoOp(t *testing.T) {
	env := newBookingTestEnv(t, 1)
	booking, err := env.service.CreateBooking(context.Background(), env.userID.String(), CreateBookingRequest{
		ShowID: env.show.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, env.service.ConfirmBooking(context.Background(), booking.ID, "cs_test_123"))
	require.NoError(t, env.service.FailBooking(context.Background(), booking.ID, "cs_test_999"))

	assert.Equal(t, StatusConfirmed, booking.Status)
	assert.Equal(t, PaymentCompleted, booking.Payment.Status)
	assert.Empty(t, env.publisher.freed)
}

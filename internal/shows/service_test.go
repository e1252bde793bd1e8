package shows

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cinebook/internal/layouts"
	"cinebook/internal/realtime"
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/utils/apperror"
	"cinebook/internal/theaters"
	"cinebook/pkg/logger"
)

// fakeRepository keeps booked seats in memory with the same
// check-then-append semantics the SQL transaction provides.
type fakeRepository struct {
	mu    sync.Mutex
	shows map[uuid.UUID]*Show
	seats map[uuid.UUID][]BookedSeat
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		shows: make(map[uuid.UUID]*Show),
		seats: make(map[uuid.UUID][]BookedSeat),
	}
}

func (f *fakeRepository) Create(ctx context.Context, show *Show) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shows[show.ID] = show
	return nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id uuid.UUID) (*Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	show, ok := f.shows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *show
	return &copied, nil
}

func (f *fakeRepository) ListByScreen(ctx context.Context, screenID uuid.UUID) ([]Show, error) {
	return nil, nil
}

func (f *fakeRepository) ListUpcomingByMovie(ctx context.Context, movieID uuid.UUID, after time.Time) ([]Show, error) {
	return nil, nil
}

func (f *fakeRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]Show, error) {
	return nil, nil
}

func (f *fakeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status ShowStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	show, ok := f.shows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	show.Status = status
	return nil
}

func (f *fakeRepository) HoldSeats(ctx context.Context, showID uuid.UUID, entries []BookedSeat) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	show, ok := f.shows[showID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if show.Status != StatusScheduled {
		return &SeatConflictError{SeatNumbers: seatNumbersOf(entries)}
	}

	taken := make(map[string]bool)
	for _, seat := range f.seats[showID] {
		taken[seat.SeatNumber] = true
	}
	var conflicts []string
	for _, entry := range entries {
		if taken[entry.SeatNumber] {
			conflicts = append(conflicts, entry.SeatNumber)
		}
	}
	if len(conflicts) > 0 {
		return &SeatConflictError{SeatNumbers: conflicts}
	}
	for i := range entries {
		if entries[i].ID == uuid.Nil {
			entries[i].ID = uuid.New()
		}
	}
	f.seats[showID] = append(f.seats[showID], entries...)
	return nil
}

// confirmSeats flips pending holds to booked, the way a completed
// payment does. Test seeding helper, not part of the Repository API.
func (f *fakeRepository) confirmSeats(showID uuid.UUID, seatNumbers []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[string]bool, len(seatNumbers))
	for _, n := range seatNumbers {
		wanted[n] = true
	}
	seats := f.seats[showID]
	for i := range seats {
		if wanted[seats[i].SeatNumber] && seats[i].IsPending {
			seats[i].IsPending = false
		}
	}
}

func (f *fakeRepository) ReleaseSeats(ctx context.Context, showID uuid.UUID, seatNumbers []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[string]bool, len(seatNumbers))
	for _, n := range seatNumbers {
		wanted[n] = true
	}
	kept := f.seats[showID][:0]
	for _, seat := range f.seats[showID] {
		if wanted[seat.SeatNumber] && seat.IsPending {
			continue
		}
		kept = append(kept, seat)
	}
	f.seats[showID] = kept
	return nil
}

func (f *fakeRepository) ReleaseExpiredHolds(ctx context.Context, showID uuid.UUID, cutoff time.Time) ([]BookedSeat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var released []BookedSeat
	kept := f.seats[showID][:0]
	for _, seat := range f.seats[showID] {
		if seat.IsPending && seat.HeldAt.Before(cutoff) {
			released = append(released, seat)
			continue
		}
		kept = append(kept, seat)
	}
	f.seats[showID] = kept
	return released, nil
}

func (f *fakeRepository) ListShowIDsWithStalePending(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var showIDs []uuid.UUID
	for showID, seats := range f.seats {
		for _, seat := range seats {
			if seat.IsPending && seat.HeldAt.Before(cutoff) {
				showIDs = append(showIDs, showID)
				break
			}
		}
	}
	return showIDs, nil
}

func (f *fakeRepository) GetBookedSeats(ctx context.Context, showID uuid.UUID) ([]BookedSeat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]BookedSeat(nil), f.seats[showID]...), nil
}

func (f *fakeRepository) GetPendingSeatsForUser(ctx context.Context, showID, userID uuid.UUID) ([]BookedSeat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []BookedSeat
	for _, seat := range f.seats[showID] {
		if seat.IsPending && seat.UserID == userID {
			result = append(result, seat)
		}
	}
	return result, nil
}

// fakeTheaterService serves one screen.
type fakeTheaterService struct {
	theaters.Service
	screen *theaters.Screen
}

func (f *fakeTheaterService) GetScreen(ctx context.Context, screenID string) (*theaters.Screen, error) {
	return f.screen, nil
}

// fakeLayoutService resolves seats from a fixed set.
type fakeLayoutService struct {
	layouts.Service
	seats map[uuid.UUID]layouts.Seat
}

func (f *fakeLayoutService) ResolveSeats(ctx context.Context, layoutID uuid.UUID, seatIDs []uuid.UUID) ([]layouts.Seat, error) {
	result := make([]layouts.Seat, 0, len(seatIDs))
	for _, id := range seatIDs {
		seat, ok := f.seats[id]
		if !ok {
			return nil, apperror.BadRequest("one or more seat IDs do not belong to this layout")
		}
		result = append(result, seat)
	}
	return result, nil
}

// fakePublisher records seat update events.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	showID      uuid.UUID
	seatNumbers []string
	status      realtime.SeatStatus
}

func (f *fakePublisher) PublishSeatUpdate(ctx context.Context, showID uuid.UUID, seatNumbers []string, status realtime.SeatStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{showID: showID, seatNumbers: seatNumbers, status: status})
	return nil
}

func (f *fakePublisher) PublishNotification(ctx context.Context, userID uuid.UUID, payload any) error {
	return nil
}

func (f *fakePublisher) eventsWithStatus(status realtime.SeatStatus) []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []publishedEvent
	for _, e := range f.events {
		if e.status == status {
			matched = append(matched, e)
		}
	}
	return matched
}

type testEnv struct {
	repo      *fakeRepository
	publisher *fakePublisher
	scheduler *ExpirationScheduler
	service   Service
	show      *Show
	seatIDs   []uuid.UUID
	seats     map[uuid.UUID]layouts.Seat
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newFakeRepository()
	publisher := &fakePublisher{}

	layoutID := uuid.New()
	screen := &theaters.Screen{ID: uuid.New(), TheaterID: uuid.New(), LayoutID: layoutID, Name: "Screen 1"}

	seats := make(map[uuid.UUID]layouts.Seat)
	var seatIDs []uuid.UUID
	for i, number := range []string{"A1", "A2", "A3", "B1"} {
		id := uuid.New()
		seatType := layouts.SeatTypeRegular
		price := 150.0
		if number == "B1" {
			seatType = layouts.SeatTypePremium
			price = 250.0
		}
		seats[id] = layouts.Seat{
			ID:       id,
			LayoutID: layoutID,
			Number:   number,
			Type:     seatType,
			Row:      1,
			Col:      i + 1,
			Price:    price,
		}
		seatIDs = append(seatIDs, id)
	}

	show := &Show{
		ID:                   uuid.New(),
		ScreenID:             screen.ID,
		VendorID:             uuid.New(),
		MovieID:              uuid.New(),
		MovieTitle:           "Interstellar",
		StartTime:            time.Now().Add(4 * time.Hour),
		EndTime:              time.Now().Add(7 * time.Hour),
		Status:               StatusScheduled,
		PriceOverridePercent: 100,
	}
	require.NoError(t, repo.Create(context.Background(), show))

	cfg := config.BookingConfig{
		HoldTTL:              5 * time.Minute,
		SweepInterval:        time.Minute,
		MaxSeatsPerSelection: 3,
	}

	gocronScheduler, err := gocron.NewScheduler()
	require.NoError(t, err)
	scheduler := NewExpirationScheduler(gocronScheduler, repo, nil, nil, publisher, nil, nil, cfg, logger.GetDefault())
	t.Cleanup(func() { _ = scheduler.Shutdown() })

	service := NewService(
		repo,
		&fakeTheaterService{screen: screen},
		&fakeLayoutService{seats: seats},
		scheduler,
		publisher,
		nil,
		cfg,
		logger.GetDefault(),
	)

	return &testEnv{
		repo:      repo,
		publisher: publisher,
		scheduler: scheduler,
		service:   service,
		show:      show,
		seatIDs:   seatIDs,
		seats:     seats,
	}
}

func TestSelectSeats_Success(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New().String()

	resp, err := env.service.SelectSeats(context.Background(), userID, env.show.ID.String(), SelectSeatsRequest{
		SeatIDs: []string{env.seatIDs[0].String(), env.seatIDs[3].String()},
	})

	require.NoError(t, err)
	require.Len(t, resp.Seats, 2)
	assert.Equal(t, 400.0, resp.TotalAmount)
	assert.True(t, resp.ExpiresAt.After(resp.HeldAt))

	held, err := env.repo.GetBookedSeats(context.Background(), env.show.ID)
	require.NoError(t, err)
	assert.Len(t, held, 2)
	for _, seat := range held {
		assert.True(t, seat.IsPending)
	}

	pending := env.publisher.eventsWithStatus(realtime.SeatStatusPending)
	require.Len(t, pending, 1)
	assert.ElementsMatch(t, []string{"A1", "B1"}, pending[0].seatNumbers)
}

func TestSelectSeats_ConflictLeavesNoPartialHold(t *testing.T) {
	env := newTestEnv(t)
	first := uuid.New().String()
	second := uuid.New().String()

	_, err := env.service.SelectSeats(context.Background(), first, env.show.ID.String(), SelectSeatsRequest{
		SeatIDs: []string{env.seatIDs[1].String()},
	})
	require.NoError(t, err)

	// A2 is taken, so requesting A2+A3 must hold nothing at all.
	_, err = env.service.SelectSeats(context.Background(), second, env.show.ID.String(), SelectSeatsRequest{
		SeatIDs: []string{env.seatIDs[1].String(), env.seatIDs[2].String()},
	})
	require.Error(t, err)
	assert.Equal(t, 409, apperror.StatusCode(err))

	held, err := env.repo.GetBookedSeats(context.Background(), env.show.ID)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, "A2", held[0].SeatNumber)
}

func TestSelectSeats_ConcurrentRequestsOneWinner(t *testing.T) {
	env := newTestEnv(t)

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.service.SelectSeats(context.Background(), uuid.New().String(), env.show.ID.String(), SelectSeatsRequest{
				SeatIDs: []string{env.seatIDs[0].String()},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.Equal(t, 409, apperror.StatusCode(err))
		conflicts++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, conflicts)

	held, err := env.repo.GetBookedSeats(context.Background(), env.show.ID)
	require.NoError(t, err)
	assert.Len(t, held, 1)
}

func TestSelectSeats_RejectsUnavailableSeat(t *testing.T) {
	env := newTestEnv(t)

	blockedID := uuid.New()
	env.seats[blockedID] = layouts.Seat{
		ID:     blockedID,
		Number: "X1",
		Type:   layouts.SeatTypeUnavailable,
		Row:    9,
		Col:    1,
	}

	_, err := env.service.SelectSeats(context.Background(), uuid.New().String(), env.show.ID.String(), SelectSeatsRequest{
		SeatIDs: []string{blockedID.String()},
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.StatusCode(err))

	held, err := env.repo.GetBookedSeats(context.Background(), env.show.ID)
	require.NoError(t, err)
	assert.Empty(t, held)
}

func TestSelectSeats_RejectsTooManySeats(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.SelectSeats(context.Background(), uuid.New().String(), env.show.ID.String(), SelectSeatsRequest{
		SeatIDs: []string{
			env.seatIDs[0].String(), env.seatIDs[1].String(),
			env.seatIDs[2].String(), env.seatIDs[3].String(),
		},
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.StatusCode(err))
}

func TestSelectSeats_RejectsDuplicateSeatIDs(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.SelectSeats(context.Background(), uuid.New().String(), env.show.ID.String(), SelectSeatsRequest{
		SeatIDs: []string{env.seatIDs[0].String(), env.seatIDs[0].String()},
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.StatusCode(err))
}

func TestSelectSeats_ClosedShow(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.repo.UpdateStatus(context.Background(), env.show.ID, StatusCancelled))

	_, err := env.service.SelectSeats(context.Background(), uuid.New().String(), env.show.ID.String(), SelectSeatsRequest{
		SeatIDs: []string{env.seatIDs[0].String()},
	})
	require.Error(t, err)
	assert.Equal(t, 409, apperror.StatusCode(err))
}

func TestSelectSeats_AppliesPriceOverride(t *testing.T) {
	env := newTestEnv(t)
	env.show.PriceOverridePercent = 120
	require.NoError(t, env.repo.Create(context.Background(), env.show))

	resp, err := env.service.SelectSeats(context.Background(), uuid.New().String(), env.show.ID.String(), SelectSeatsRequest{
		SeatIDs: []string{env.seatIDs[0].String()},
	})
	require.NoError(t, err)
	assert.InDelta(t, 180.0, resp.TotalAmount, 0.001)
}

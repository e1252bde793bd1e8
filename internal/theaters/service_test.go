package theaters

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinebook/internal/shared/utils/apperror"
)

// fakeSlotRepository keeps filled_times in memory. Like the SQL layer
// it checks the overlap and appends the slot under one lock, so
// concurrent reservations serialize.
type fakeSlotRepository struct {
	Repository
	mu    sync.Mutex
	slots []FilledTime
}

func (f *fakeSlotRepository) ReserveSlot(ctx context.Context, slot *FilledTime) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.slots {
		if existing.ScreenID == slot.ScreenID && existing.Overlaps(slot.StartTime, slot.EndTime) {
			return ErrSlotConflict
		}
	}
	f.slots = append(f.slots, *slot)
	return nil
}

func (f *fakeSlotRepository) RemoveFilledTimeByShow(ctx context.Context, showID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.slots[:0]
	for _, slot := range f.slots {
		if slot.ShowID != showID {
			kept = append(kept, slot)
		}
	}
	f.slots = kept
	return nil
}

func TestReserveSlot_RejectsOverlap(t *testing.T) {
	repo := &fakeSlotRepository{}
	service := NewService(repo, nil)
	screenID := uuid.New()
	base := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	require.NoError(t, service.ReserveSlot(context.Background(), screenID, uuid.New(), base, base.Add(3*time.Hour)))

	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"starts inside", base.Add(time.Hour), base.Add(4 * time.Hour)},
		{"ends inside", base.Add(-time.Hour), base.Add(time.Hour)},
		{"covers entirely", base.Add(-time.Hour), base.Add(4 * time.Hour)},
		{"contained within", base.Add(time.Hour), base.Add(2 * time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := service.ReserveSlot(context.Background(), screenID, uuid.New(), tc.start, tc.end)
			require.Error(t, err)
			assert.Equal(t, 409, apperror.StatusCode(err))
		})
	}
}

func TestReserveSlot_BackToBackShowsAllowed(t *testing.T) {
	repo := &fakeSlotRepository{}
	service := NewService(repo, nil)
	screenID := uuid.New()
	base := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	require.NoError(t, service.ReserveSlot(context.Background(), screenID, uuid.New(), base, base.Add(3*time.Hour)))
	// The window is half-open: a show starting exactly at the other's
	// end does not overlap.
	require.NoError(t, service.ReserveSlot(context.Background(), screenID, uuid.New(), base.Add(3*time.Hour), base.Add(6*time.Hour)))
}

func TestReserveSlot_OtherScreenUnaffected(t *testing.T) {
	repo := &fakeSlotRepository{}
	service := NewService(repo, nil)
	base := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	require.NoError(t, service.ReserveSlot(context.Background(), uuid.New(), uuid.New(), base, base.Add(3*time.Hour)))
	require.NoError(t, service.ReserveSlot(context.Background(), uuid.New(), uuid.New(), base, base.Add(3*time.Hour)))
}

func TestReserveSlot_RejectsInvertedWindow(t *testing.T) {
	service := NewService(&fakeSlotRepository{}, nil)
	base := time.Now()

	err := service.ReserveSlot(context.Background(), uuid.New(), uuid.New(), base.Add(time.Hour), base)
	require.Error(t, err)
	assert.Equal(t, 400, apperror.StatusCode(err))
}

func TestReserveSlot_ConcurrentRequestsOneWinner(t *testing.T) {
	repo := &fakeSlotRepository{}
	service := NewService(repo, nil)
	screenID := uuid.New()
	base := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	const attempts = 16
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- service.ReserveSlot(context.Background(), screenID, uuid.New(), base, base.Add(3*time.Hour))
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, 409, apperror.StatusCode(err))
		conflicted++
	}
	assert.Equal(t, 1, succeeded, "exactly one reservation may win the window")
	assert.Equal(t, attempts-1, conflicted)
	assert.Len(t, repo.slots, 1)
}

func TestReleaseSlot_FreesWindowForReuse(t *testing.T) {
	repo := &fakeSlotRepository{}
	service := NewService(repo, nil)
	screenID := uuid.New()
	showID := uuid.New()
	base := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	require.NoError(t, service.ReserveSlot(context.Background(), screenID, showID, base, base.Add(3*time.Hour)))
	require.NoError(t, service.ReleaseSlot(context.Background(), showID))
	require.NoError(t, service.ReserveSlot(context.Background(), screenID, uuid.New(), base, base.Add(3*time.Hour)))
}

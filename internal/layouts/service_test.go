package layouts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeLayoutRepository struct {
	layouts map[uuid.UUID]*SeatLayout
}

func newFakeLayoutRepository() *fakeLayoutRepository {
	return &fakeLayoutRepository{layouts: make(map[uuid.UUID]*SeatLayout)}
}

func (f *fakeLayoutRepository) Create(ctx context.Context, layout *SeatLayout) error {
	if layout.ID == uuid.Nil {
		layout.ID = uuid.New()
	}
	for i := range layout.Seats {
		if layout.Seats[i].ID == uuid.Nil {
			layout.Seats[i].ID = uuid.New()
		}
		layout.Seats[i].LayoutID = layout.ID
	}
	f.layouts[layout.ID] = layout
	return nil
}

func (f *fakeLayoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*SeatLayout, error) {
	layout, ok := f.layouts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return layout, nil
}

func (f *fakeLayoutRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]SeatLayout, error) {
	var result []SeatLayout
	for _, l := range f.layouts {
		if l.VendorID == vendorID {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (f *fakeLayoutRepository) ReplaceSeats(ctx context.Context, layoutID uuid.UUID, seats []Seat, capacity int) error {
	layout, ok := f.layouts[layoutID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range seats {
		if seats[i].ID == uuid.Nil {
			seats[i].ID = uuid.New()
		}
		seats[i].LayoutID = layoutID
	}
	layout.Seats = seats
	layout.Capacity = capacity
	return nil
}

func (f *fakeLayoutRepository) GetSeatsByIDs(ctx context.Context, layoutID uuid.UUID, seatIDs []uuid.UUID) ([]Seat, error) {
	layout, ok := f.layouts[layoutID]
	if !ok {
		return nil, nil
	}
	wanted := make(map[uuid.UUID]bool, len(seatIDs))
	for _, id := range seatIDs {
		wanted[id] = true
	}
	var result []Seat
	for _, seat := range layout.Seats {
		if wanted[seat.ID] {
			result = append(result, seat)
		}
	}
	return result, nil
}

func validLayoutRequest() CreateLayoutRequest {
	return CreateLayoutRequest{
		Name:         "Small Hall",
		RowCount:     2,
		ColumnCount:  2,
		PriceRegular: 150,
		PricePremium: 250,
		PriceVIP:     400,
		Seats: []SeatDefinition{
			{Number: "A1", Type: "REGULAR", Row: 0, Col: 0},
			{Number: "A2", Type: "PREMIUM", Row: 0, Col: 1},
			{Number: "B1", Type: "VIP", Row: 1, Col: 0},
			{Number: "B2", Type: "UNAVAILABLE", Row: 1, Col: 1},
		},
	}
}

func TestCreateLayout_Success(t *testing.T) {
	service := NewService(newFakeLayoutRepository())
	vendorID := uuid.New().String()

	layout, err := service.CreateLayout(context.Background(), vendorID, validLayoutRequest())

	require.NoError(t, err)
	assert.Len(t, layout.Seats, 4)
	// Unavailable seats are structural gaps, not sellable capacity.
	assert.Equal(t, 3, layout.Capacity)

	prices := make(map[string]float64)
	for _, seat := range layout.Seats {
		prices[seat.Number] = seat.Price
	}
	assert.Equal(t, 150.0, prices["A1"])
	assert.Equal(t, 250.0, prices["A2"])
	assert.Equal(t, 400.0, prices["B1"])
}

func TestCreateLayout_SeatCountMustMatchGrid(t *testing.T) {
	service := NewService(newFakeLayoutRepository())
	req := validLayoutRequest()
	req.Seats = req.Seats[:3]

	_, err := service.CreateLayout(context.Background(), uuid.New().String(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires exactly")
}

func TestCreateLayout_RejectsDuplicateSeatNumber(t *testing.T) {
	service := NewService(newFakeLayoutRepository())
	req := validLayoutRequest()
	req.Seats[1].Number = "A1"

	_, err := service.CreateLayout(context.Background(), uuid.New().String(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate seat number")
}

func TestCreateLayout_RejectsOutOfBoundsPosition(t *testing.T) {
	service := NewService(newFakeLayoutRepository())
	req := validLayoutRequest()
	req.Seats[0].Row = 3

	_, err := service.CreateLayout(context.Background(), uuid.New().String(), req)
	require.Error(t, err)
}

func TestReplaceSeats_RevalidatesAndRecomputesCapacity(t *testing.T) {
	repo := newFakeLayoutRepository()
	service := NewService(repo)
	layout, err := service.CreateLayout(context.Background(), uuid.New().String(), validLayoutRequest())
	require.NoError(t, err)

	updated, err := service.ReplaceSeats(context.Background(), layout.ID.String(), ReplaceSeatsRequest{
		Seats: []SeatDefinition{
			{Number: "A1", Type: "UNAVAILABLE", Row: 0, Col: 0},
			{Number: "A2", Type: "UNAVAILABLE", Row: 0, Col: 1},
			{Number: "B1", Type: "REGULAR", Row: 1, Col: 0},
			{Number: "B2", Type: "REGULAR", Row: 1, Col: 1},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, updated.Capacity)
}

func TestReplaceSeats_RejectsInvalidSwap(t *testing.T) {
	repo := newFakeLayoutRepository()
	service := NewService(repo)
	layout, err := service.CreateLayout(context.Background(), uuid.New().String(), validLayoutRequest())
	require.NoError(t, err)

	_, err = service.ReplaceSeats(context.Background(), layout.ID.String(), ReplaceSeatsRequest{
		Seats: []SeatDefinition{
			{Number: "A1", Type: "REGULAR", Row: 0, Col: 0},
		},
	})
	require.Error(t, err)

	// Failed swap leaves the original seats in place.
	current, err := service.GetLayout(context.Background(), layout.ID.String())
	require.NoError(t, err)
	assert.Len(t, current.Seats, 4)
	assert.Equal(t, 3, current.Capacity)
}

func TestResolveSeats_AllIDsMustBelong(t *testing.T) {
	repo := newFakeLayoutRepository()
	service := NewService(repo)
	layout, err := service.CreateLayout(context.Background(), uuid.New().String(), validLayoutRequest())
	require.NoError(t, err)

	resolved, err := service.ResolveSeats(context.Background(), layout.ID, []uuid.UUID{layout.Seats[0].ID, layout.Seats[2].ID})
	require.NoError(t, err)
	assert.Len(t, resolved, 2)

	_, err = service.ResolveSeats(context.Background(), layout.ID, []uuid.UUID{layout.Seats[0].ID, uuid.New()})
	require.Error(t, err)
}

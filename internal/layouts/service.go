package layouts

import (
	"context"
	"errors"
	"fmt"

	"cinebook/internal/shared/utils/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	CreateLayout(ctx context.Context, vendorID string, req CreateLayoutRequest) (*SeatLayout, error)
	GetLayout(ctx context.Context, id string) (*SeatLayout, error)
	ListVendorLayouts(ctx context.Context, vendorID string) ([]SeatLayout, error)
	ReplaceSeats(ctx context.Context, layoutID string, req ReplaceSeatsRequest) (*SeatLayout, error)

	// ResolveSeats maps a selection's seat ids to seat reference data,
	// restricted to the given layout. Every id must resolve.
	ResolveSeats(ctx context.Context, layoutID uuid.UUID, seatIDs []uuid.UUID) ([]Seat, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateLayout(ctx context.Context, vendorID string, req CreateLayoutRequest) (*SeatLayout, error) {
	vendorUUID, err := uuid.Parse(vendorID)
	if err != nil {
		return nil, apperror.BadRequest("invalid vendor ID")
	}

	layout := &SeatLayout{
		VendorID:     vendorUUID,
		Name:         req.Name,
		RowCount:     req.RowCount,
		ColumnCount:  req.ColumnCount,
		PriceRegular: req.PriceRegular,
		PricePremium: req.PricePremium,
		PriceVIP:     req.PriceVIP,
	}

	seats, capacity, err := buildSeatSet(layout, req.Seats)
	if err != nil {
		return nil, err
	}
	layout.Seats = seats
	layout.Capacity = capacity

	if err := s.repo.Create(ctx, layout); err != nil {
		return nil, apperror.Internal("failed to create seat layout", err)
	}
	return layout, nil
}

func (s *service) GetLayout(ctx context.Context, id string) (*SeatLayout, error) {
	layoutID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid layout ID")
	}

	layout, err := s.repo.GetByID(ctx, layoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("seat layout not found")
		}
		return nil, apperror.Internal("failed to get seat layout", err)
	}
	return layout, nil
}

func (s *service) ListVendorLayouts(ctx context.Context, vendorID string) ([]SeatLayout, error) {
	vendorUUID, err := uuid.Parse(vendorID)
	if err != nil {
		return nil, apperror.BadRequest("invalid vendor ID")
	}
	list, err := s.repo.ListByVendor(ctx, vendorUUID)
	if err != nil {
		return nil, apperror.Internal("failed to list seat layouts", err)
	}
	return list, nil
}

func (s *service) ReplaceSeats(ctx context.Context, layoutID string, req ReplaceSeatsRequest) (*SeatLayout, error) {
	id, err := uuid.Parse(layoutID)
	if err != nil {
		return nil, apperror.BadRequest("invalid layout ID")
	}

	layout, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("seat layout not found")
		}
		return nil, apperror.Internal("failed to get seat layout", err)
	}

	seats, capacity, err := buildSeatSet(layout, req.Seats)
	if err != nil {
		return nil, err
	}
	for i := range seats {
		seats[i].LayoutID = id
	}

	if err := s.repo.ReplaceSeats(ctx, id, seats, capacity); err != nil {
		return nil, apperror.Internal("failed to replace layout seats", err)
	}

	return s.repo.GetByID(ctx, id)
}

func (s *service) ResolveSeats(ctx context.Context, layoutID uuid.UUID, seatIDs []uuid.UUID) ([]Seat, error) {
	seats, err := s.repo.GetSeatsByIDs(ctx, layoutID, seatIDs)
	if err != nil {
		return nil, apperror.Internal("failed to resolve seats", err)
	}
	if len(seats) != len(seatIDs) {
		return nil, apperror.BadRequest("one or more seat IDs do not belong to this layout")
	}
	return seats, nil
}

// buildSeatSet validates a seat definition set against the layout geometry
// and prices it from the layout's price table. Invariants: the set covers
// rows*cols exactly, positions are unique and in bounds, seat numbers are
// unique; capacity counts bookable seats only.
func buildSeatSet(layout *SeatLayout, defs []SeatDefinition) ([]Seat, int, error) {
	expected := layout.RowCount * layout.ColumnCount
	if len(defs) != expected {
		return nil, 0, apperror.BadRequest(
			fmt.Sprintf("layout requires exactly %d seats (%dx%d), got %d",
				expected, layout.RowCount, layout.ColumnCount, len(defs)))
	}

	seenNumbers := make(map[string]bool, len(defs))
	seenPositions := make(map[[2]int]bool, len(defs))
	seats := make([]Seat, 0, len(defs))
	capacity := 0

	for _, def := range defs {
		if !IsValidSeatType(def.Type) {
			return nil, 0, apperror.BadRequest(fmt.Sprintf("invalid seat type: %s", def.Type))
		}
		if def.Row >= layout.RowCount || def.Col >= layout.ColumnCount {
			return nil, 0, apperror.BadRequest(
				fmt.Sprintf("seat %s position (%d,%d) is out of bounds", def.Number, def.Row, def.Col))
		}
		if seenNumbers[def.Number] {
			return nil, 0, apperror.BadRequest(fmt.Sprintf("duplicate seat number: %s", def.Number))
		}
		pos := [2]int{def.Row, def.Col}
		if seenPositions[pos] {
			return nil, 0, apperror.BadRequest(
				fmt.Sprintf("duplicate seat position (%d,%d)", def.Row, def.Col))
		}
		seenNumbers[def.Number] = true
		seenPositions[pos] = true

		seatType := SeatType(def.Type)
		if seatType != SeatTypeUnavailable {
			capacity++
		}

		seats = append(seats, Seat{
			Number: def.Number,
			Type:   seatType,
			Row:    def.Row,
			Col:    def.Col,
			Price:  layout.PriceFor(seatType),
		})
	}

	return seats, capacity, nil
}

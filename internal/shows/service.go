package shows

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cinebook/internal/layouts"
	"cinebook/internal/realtime"
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/constants"
	"cinebook/internal/shared/utils/apperror"
	"cinebook/internal/theaters"
	"cinebook/pkg/cache"
	"cinebook/pkg/logger"
)

type Service interface {
	// Show lifecycle
	CreateShow(ctx context.Context, vendorID string, req CreateShowRequest) (*Show, error)
	GetShow(ctx context.Context, showID string) (*Show, error)
	ListShowsByScreen(ctx context.Context, screenID string) ([]Show, error)
	ListShowsByMovie(ctx context.Context, movieID string) ([]Show, error)
	ListVendorShows(ctx context.Context, vendorID string) ([]Show, error)
	UpdateShowStatus(ctx context.Context, vendorID, showID string, req UpdateShowStatusRequest) (*Show, error)

	// Seat selection (core flow)
	SelectSeats(ctx context.Context, userID, showID string, req SelectSeatsRequest) (*SelectSeatsResponse, error)
	GetSeatMap(ctx context.Context, showID string) (*SeatMapResponse, error)

	// Pending holds for the booking flow.
	GetUserPendingSeats(ctx context.Context, userID, showID string) ([]BookedSeat, error)
}

type service struct {
	repo      Repository
	theaters  theaters.Service
	layouts   layouts.Service
	scheduler *ExpirationScheduler
	publisher realtime.Publisher
	cache     cache.Service
	cfg       config.BookingConfig
	log       *logger.Logger
}

func NewService(
	repo Repository,
	theaterSvc theaters.Service,
	layoutSvc layouts.Service,
	scheduler *ExpirationScheduler,
	publisher realtime.Publisher,
	cacheService cache.Service,
	cfg config.BookingConfig,
	log *logger.Logger,
) Service {
	return &service{
		repo:      repo,
		theaters:  theaterSvc,
		layouts:   layoutSvc,
		scheduler: scheduler,
		publisher: publisher,
		cache:     cacheService,
		cfg:       cfg,
		log:       log,
	}
}

//  SHOW LIFECYCLE

func (s *service) CreateShow(ctx context.Context, vendorID string, req CreateShowRequest) (*Show, error) {
	vid, err := uuid.Parse(vendorID)
	if err != nil {
		return nil, apperror.BadRequest("invalid vendor id")
	}
	movieID, err := uuid.Parse(req.MovieID)
	if err != nil {
		return nil, apperror.BadRequest("invalid movie id")
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, apperror.BadRequest("show start must be before end")
	}

	screen, err := s.theaters.GetScreen(ctx, req.ScreenID)
	if err != nil {
		return nil, err
	}

	override := req.PriceOverridePercent
	if override == 0 {
		override = 100
	}

	show := &Show{
		ID:                   uuid.New(),
		ScreenID:             screen.ID,
		VendorID:             vid,
		MovieID:              movieID,
		MovieTitle:           req.MovieTitle,
		Language:             req.Language,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		Status:               StatusScheduled,
		PriceOverridePercent: override,
	}

	// Claim the screen's timeline first so two vendors racing for one
	// slot cannot both end up with a scheduled show.
	if err := s.theaters.ReserveSlot(ctx, screen.ID, show.ID, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, show); err != nil {
		if relErr := s.theaters.ReleaseSlot(ctx, show.ID); relErr != nil {
			s.log.ErrorWithContext(ctx, "failed to release slot after show create failure", relErr, map[string]interface{}{
				"show_id": show.ID.String(),
			})
		}
		return nil, apperror.Internal("failed to create show", err)
	}
	return show, nil
}

func (s *service) GetShow(ctx context.Context, showID string) (*Show, error) {
	id, err := uuid.Parse(showID)
	if err != nil {
		return nil, apperror.BadRequest("invalid show id")
	}

	var show Show
	if s.cache != nil {
		cacheErr := s.cache.GetOrSet(ctx, constants.BuildShowDetailKey(showID), constants.TTL_SEMI_STATIC_MEDIUM,
			func() (interface{}, error) {
				return s.repo.GetByID(ctx, id)
			}, &show)
		if cacheErr == nil {
			return &show, nil
		}
		if errors.Is(cacheErr, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("show not found")
		}
	}

	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("show not found")
		}
		return nil, apperror.Internal("failed to fetch show", err)
	}
	return found, nil
}

func (s *service) ListShowsByScreen(ctx context.Context, screenID string) ([]Show, error) {
	id, err := uuid.Parse(screenID)
	if err != nil {
		return nil, apperror.BadRequest("invalid screen id")
	}
	shows, err := s.repo.ListByScreen(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to list shows", err)
	}
	return shows, nil
}

func (s *service) ListShowsByMovie(ctx context.Context, movieID string) ([]Show, error) {
	id, err := uuid.Parse(movieID)
	if err != nil {
		return nil, apperror.BadRequest("invalid movie id")
	}
	shows, err := s.repo.ListUpcomingByMovie(ctx, id, time.Now())
	if err != nil {
		return nil, apperror.Internal("failed to list shows", err)
	}
	return shows, nil
}

func (s *service) ListVendorShows(ctx context.Context, vendorID string) ([]Show, error) {
	id, err := uuid.Parse(vendorID)
	if err != nil {
		return nil, apperror.BadRequest("invalid vendor id")
	}
	shows, err := s.repo.ListByVendor(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to list shows", err)
	}
	return shows, nil
}

func (s *service) UpdateShowStatus(ctx context.Context, vendorID, showID string, req UpdateShowStatusRequest) (*Show, error) {
	show, err := s.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	if show.VendorID.String() != vendorID {
		return nil, apperror.New(http.StatusForbidden, "show belongs to another vendor")
	}

	newStatus := ShowStatus(req.Status)
	if !validTransition(show.Status, newStatus) {
		return nil, apperror.Conflict(fmt.Sprintf("cannot move show from %s to %s", show.Status, newStatus))
	}

	if err := s.repo.UpdateStatus(ctx, show.ID, newStatus); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("show not found")
		}
		return nil, apperror.Internal("failed to update show status", err)
	}
	show.Status = newStatus

	if s.cache != nil {
		if err := s.cache.Delete(ctx, constants.BuildShowDetailKey(showID)); err != nil {
			s.log.ErrorWithContext(ctx, "failed to invalidate show cache", err, nil)
		}
	}

	// A cancelled show frees its screen slot and drops outstanding holds.
	if newStatus == StatusCancelled {
		if err := s.theaters.ReleaseSlot(ctx, show.ID); err != nil {
			s.log.ErrorWithContext(ctx, "failed to release slot for cancelled show", err, nil)
		}
		if _, err := s.repo.ReleaseExpiredHolds(ctx, show.ID, time.Now()); err != nil {
			s.log.ErrorWithContext(ctx, "failed to drop holds for cancelled show", err, nil)
		}
	}

	return show, nil
}

// Valid forward transitions of a show's lifecycle.
func validTransition(from, to ShowStatus) bool {
	switch from {
	case StatusScheduled:
		return to == StatusRunning || to == StatusCancelled
	case StatusRunning:
		return to == StatusCompleted
	default:
		return false
	}
}

//  SEAT SELECTION

func (s *service) SelectSeats(ctx context.Context, userID, showID string, req SelectSeatsRequest) (*SelectSeatsResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperror.BadRequest("invalid user id")
	}
	if len(req.SeatIDs) > s.cfg.MaxSeatsPerSelection {
		return nil, apperror.BadRequest(fmt.Sprintf("cannot select more than %d seats at once", s.cfg.MaxSeatsPerSelection))
	}

	seatIDs := make([]uuid.UUID, 0, len(req.SeatIDs))
	seen := make(map[uuid.UUID]struct{}, len(req.SeatIDs))
	for _, raw := range req.SeatIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperror.BadRequest(fmt.Sprintf("invalid seat id: %s", raw))
		}
		if _, dup := seen[id]; dup {
			return nil, apperror.BadRequest(fmt.Sprintf("duplicate seat id: %s", raw))
		}
		seen[id] = struct{}{}
		seatIDs = append(seatIDs, id)
	}

	show, err := s.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	if !show.IsSelectable(time.Now()) {
		return nil, apperror.Conflict("show is not open for seat selection")
	}

	screen, err := s.theaters.GetScreen(ctx, show.ScreenID.String())
	if err != nil {
		return nil, err
	}

	seats, err := s.layouts.ResolveSeats(ctx, screen.LayoutID, seatIDs)
	if err != nil {
		return nil, err
	}
	for _, seat := range seats {
		if !seat.IsBookable() {
			return nil, apperror.BadRequest(fmt.Sprintf("seat %s is not bookable", seat.Number))
		}
	}

	heldAt := time.Now()
	entries := make([]BookedSeat, 0, len(seats))
	selected := make([]SelectedSeat, 0, len(seats))
	seatNumbers := make([]string, 0, len(seats))
	var total float64
	for _, seat := range seats {
		price := show.EffectivePrice(seat.Price)
		entries = append(entries, BookedSeat{
			ShowID:     show.ID,
			SeatNumber: seat.Number,
			SeatID:     seat.ID,
			UserID:     uid,
			SeatType:   seat.Type,
			Row:        seat.Row,
			Col:        seat.Col,
			Price:      price,
			IsPending:  true,
			HeldAt:     heldAt,
		})
		selected = append(selected, SelectedSeat{
			SeatID:     seat.ID,
			SeatNumber: seat.Number,
			SeatType:   seat.Type,
			Price:      price,
		})
		seatNumbers = append(seatNumbers, seat.Number)
		total += price
	}

	if err := s.repo.HoldSeats(ctx, show.ID, entries); err != nil {
		var conflict *SeatConflictError
		if errors.As(err, &conflict) {
			return nil, apperror.Conflict(conflict.Error())
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("show not found")
		}
		return nil, apperror.Internal("failed to hold seats", err)
	}

	// The hold is durable. Arm the expiry job before answering; a hold
	// that cannot be scheduled for release must not survive.
	if err := s.scheduler.Arm(ctx, show.ID); err != nil {
		if relErr := s.repo.ReleaseSeats(ctx, show.ID, seatNumbers); relErr != nil {
			s.log.ErrorWithContext(ctx, "failed to compensate unarmed hold", relErr, map[string]interface{}{
				"show_id": show.ID.String(),
			})
		}
		return nil, apperror.Internal("failed to schedule hold expiry", err)
	}

	s.log.LogSeatsHeld(ctx, show.ID.String(), userID, seatNumbers)

	if s.cache != nil {
		if err := s.cache.Delete(ctx, constants.BuildShowSeatsKey(showID)); err != nil {
			s.log.ErrorWithContext(ctx, "failed to invalidate seat cache", err, nil)
		}
	}
	if err := s.publisher.PublishSeatUpdate(ctx, show.ID, seatNumbers, realtime.SeatStatusPending); err != nil {
		s.log.ErrorWithContext(ctx, "failed to publish held seats", err, nil)
	}

	return &SelectSeatsResponse{
		ShowID:      show.ID,
		Seats:       selected,
		TotalAmount: total,
		HeldAt:      heldAt,
		ExpiresAt:   heldAt.Add(s.cfg.HoldTTL),
	}, nil
}

func (s *service) GetSeatMap(ctx context.Context, showID string) (*SeatMapResponse, error) {
	show, err := s.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}

	var resp SeatMapResponse
	if s.cache != nil {
		cacheErr := s.cache.GetOrSet(ctx, constants.BuildShowSeatsKey(showID), constants.TTL_DYNAMIC_SHORT,
			func() (interface{}, error) {
				return s.buildSeatMap(ctx, show)
			}, &resp)
		if cacheErr == nil {
			return &resp, nil
		}
	}

	built, err := s.buildSeatMap(ctx, show)
	if err != nil {
		return nil, err
	}
	return built, nil
}

func (s *service) buildSeatMap(ctx context.Context, show *Show) (*SeatMapResponse, error) {
	screen, err := s.theaters.GetScreen(ctx, show.ScreenID.String())
	if err != nil {
		return nil, err
	}
	layout, err := s.layouts.GetLayout(ctx, screen.LayoutID.String())
	if err != nil {
		return nil, err
	}
	booked, err := s.repo.GetBookedSeats(ctx, show.ID)
	if err != nil {
		return nil, apperror.Internal("failed to load booked seats", err)
	}

	status := make(map[string]string, len(booked))
	for _, seat := range booked {
		if seat.IsPending {
			status[seat.SeatNumber] = "pending"
		} else {
			status[seat.SeatNumber] = "booked"
		}
	}

	entries := make([]SeatMapEntry, 0, len(layout.Seats))
	for _, seat := range layout.Seats {
		state := "available"
		if !seat.IsBookable() {
			state = "unavailable"
		} else if st, taken := status[seat.Number]; taken {
			state = st
		}
		entries = append(entries, SeatMapEntry{
			SeatID:     seat.ID,
			SeatNumber: seat.Number,
			SeatType:   seat.Type,
			Row:        seat.Row,
			Col:        seat.Col,
			Price:      show.EffectivePrice(seat.Price),
			Status:     state,
		})
	}

	return &SeatMapResponse{ShowID: show.ID, Seats: entries}, nil
}

func (s *service) GetUserPendingSeats(ctx context.Context, userID, showID string) ([]BookedSeat, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperror.BadRequest("invalid user id")
	}
	sid, err := uuid.Parse(showID)
	if err != nil {
		return nil, apperror.BadRequest("invalid show id")
	}
	seats, err := s.repo.GetPendingSeatsForUser(ctx, sid, uid)
	if err != nil {
		return nil, apperror.Internal("failed to load pending seats", err)
	}
	return seats, nil
}

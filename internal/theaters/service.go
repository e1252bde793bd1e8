package theaters

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cinebook/internal/layouts"
	"cinebook/internal/shared/utils/apperror"
)

type Service interface {
	CreateTheater(ctx context.Context, vendorID string, req CreateTheaterRequest) (*Theater, error)
	GetTheater(ctx context.Context, theaterID string) (*Theater, error)
	ListVendorTheaters(ctx context.Context, vendorID string) ([]Theater, error)
	ListTheatersByCity(ctx context.Context, city string) ([]Theater, error)

	CreateScreen(ctx context.Context, vendorID, theaterID string, req CreateScreenRequest) (*Screen, error)
	GetScreen(ctx context.Context, screenID string) (*Screen, error)
	ListScreens(ctx context.Context, theaterID string) ([]Screen, error)

	// ReserveSlot claims [start, end) on the screen's timeline for a show.
	// It fails with a conflict error when the window overlaps an existing slot.
	ReserveSlot(ctx context.Context, screenID, showID uuid.UUID, start, end time.Time) error
	ReleaseSlot(ctx context.Context, showID uuid.UUID) error
}

type service struct {
	repo    Repository
	layouts layouts.Service
}

func NewService(repo Repository, layoutSvc layouts.Service) Service {
	return &service{repo: repo, layouts: layoutSvc}
}

func (s *service) CreateTheater(ctx context.Context, vendorID string, req CreateTheaterRequest) (*Theater, error) {
	vid, err := uuid.Parse(vendorID)
	if err != nil {
		return nil, apperror.BadRequest("invalid vendor id")
	}

	theater := &Theater{
		VendorID: vid,
		Name:     req.Name,
		City:     req.City,
		Address:  req.Address,
	}
	if err := s.repo.CreateTheater(ctx, theater); err != nil {
		return nil, apperror.Internal("failed to create theater", err)
	}
	return theater, nil
}

func (s *service) GetTheater(ctx context.Context, theaterID string) (*Theater, error) {
	id, err := uuid.Parse(theaterID)
	if err != nil {
		return nil, apperror.BadRequest("invalid theater id")
	}
	theater, err := s.repo.GetTheaterByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("theater not found")
		}
		return nil, apperror.Internal("failed to fetch theater", err)
	}
	return theater, nil
}

func (s *service) ListVendorTheaters(ctx context.Context, vendorID string) ([]Theater, error) {
	vid, err := uuid.Parse(vendorID)
	if err != nil {
		return nil, apperror.BadRequest("invalid vendor id")
	}
	theaters, err := s.repo.ListTheatersByVendor(ctx, vid)
	if err != nil {
		return nil, apperror.Internal("failed to list theaters", err)
	}
	return theaters, nil
}

func (s *service) ListTheatersByCity(ctx context.Context, city string) ([]Theater, error) {
	if city == "" {
		return nil, apperror.BadRequest("city is required")
	}
	theaters, err := s.repo.ListTheatersByCity(ctx, city)
	if err != nil {
		return nil, apperror.Internal("failed to list theaters", err)
	}
	return theaters, nil
}

func (s *service) CreateScreen(ctx context.Context, vendorID, theaterID string, req CreateScreenRequest) (*Screen, error) {
	theater, err := s.GetTheater(ctx, theaterID)
	if err != nil {
		return nil, err
	}
	if theater.VendorID.String() != vendorID {
		return nil, apperror.New(http.StatusForbidden, "theater belongs to another vendor")
	}

	layoutID, err := uuid.Parse(req.LayoutID)
	if err != nil {
		return nil, apperror.BadRequest("invalid layout id")
	}
	// The layout must exist before a screen can point at it.
	if _, err := s.layouts.GetLayout(ctx, req.LayoutID); err != nil {
		return nil, err
	}

	screen := &Screen{
		TheaterID: theater.ID,
		LayoutID:  layoutID,
		Name:      req.Name,
	}
	if err := s.repo.CreateScreen(ctx, screen); err != nil {
		return nil, apperror.Internal("failed to create screen", err)
	}
	return screen, nil
}

func (s *service) GetScreen(ctx context.Context, screenID string) (*Screen, error) {
	id, err := uuid.Parse(screenID)
	if err != nil {
		return nil, apperror.BadRequest("invalid screen id")
	}
	screen, err := s.repo.GetScreenByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("screen not found")
		}
		return nil, apperror.Internal("failed to fetch screen", err)
	}
	return screen, nil
}

func (s *service) ListScreens(ctx context.Context, theaterID string) ([]Screen, error) {
	id, err := uuid.Parse(theaterID)
	if err != nil {
		return nil, apperror.BadRequest("invalid theater id")
	}
	screens, err := s.repo.ListScreensByTheater(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to list screens", err)
	}
	return screens, nil
}

func (s *service) ReserveSlot(ctx context.Context, screenID, showID uuid.UUID, start, end time.Time) error {
	if !start.Before(end) {
		return apperror.BadRequest("show start must be before end")
	}
	slot := &FilledTime{
		ScreenID:  screenID,
		ShowID:    showID,
		StartTime: start,
		EndTime:   end,
	}
	if err := s.repo.ReserveSlot(ctx, slot); err != nil {
		switch {
		case errors.Is(err, ErrSlotConflict):
			return apperror.Conflict("screen is already occupied for that time window")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return apperror.NotFound("screen not found")
		default:
			return apperror.Internal("failed to reserve screen slot", err)
		}
	}
	return nil
}

func (s *service) ReleaseSlot(ctx context.Context, showID uuid.UUID) error {
	if err := s.repo.RemoveFilledTimeByShow(ctx, showID); err != nil {
		return apperror.Internal("failed to release screen slot", err)
	}
	return nil
}

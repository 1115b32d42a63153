package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/pinewood/booking-api/internal/model"
	"github.com/pinewood/booking-api/internal/repository"
	apperrors "github.com/pinewood/booking-api/pkg/errors"
)

// Service manages the appointment type catalog.
type Service struct {
	types repository.AppointmentTypeRepository
	cache *gocache.Cache
}

func NewService(types repository.AppointmentTypeRepository, c *gocache.Cache) *Service {
	return &Service{types: types, cache: c}
}

func (s *Service) CreateType(ctx context.Context, req *model.CreateAppointmentTypeRequest) (*model.AppointmentType, error) {
	now := time.Now()
	t := &model.AppointmentType{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
	}
	if err := s.types.Create(ctx, t); err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	return t, nil
}

func (s *Service) ListTypes(ctx context.Context, activeOnly bool) ([]*model.AppointmentType, error) {
	types, err := s.types.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	return types, nil
}

// DeactivateType retires a type. Types referenced by appointments are
// never deleted, only hidden from new bookings.
func (s *Service) DeactivateType(ctx context.Context, id uuid.UUID) error {
	if err := s.types.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("appointment type", err)
		}
		return apperrors.StoreUnavailable(err)
	}
	if s.cache != nil {
		s.cache.Delete("type:" + id.String())
	}
	return nil
}

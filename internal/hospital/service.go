package hospital

import (
	"context"
	"log/slog"
)

// Repository returns internal.ErrHospitalNotFound for missing rows and
// internal.ErrHospitalExists when the name is taken.
type Repository interface {
	List(ctx context.Context) ([]*Hospital, error)
	GetByID(ctx context.Context, id string) (*Hospital, error)
	Create(ctx context.Context, h *Hospital) error
	Update(ctx context.Context, h *Hospital) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*Hospital, error) {
	hospitals, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list hospitals", "error", err)
		return nil, err
	}
	s.logger.Debug("retrieved hospitals", "count", len(hospitals))
	return hospitals, nil
}

func (s *Service) Create(ctx context.Context, dto HospitalDTO) (*Hospital, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	h := NewHospital(dto)
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}

	s.logger.Info("hospital added", "hospital_id", h.ID, "name", h.Name)
	return h, nil
}

func (s *Service) Update(ctx context.Context, id string, dto HospitalDTO) (*Hospital, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	h.Apply(dto)
	if err := s.repo.Update(ctx, h); err != nil {
		return nil, err
	}

	s.logger.Info("hospital updated", "hospital_id", h.ID)
	return h, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("hospital deleted", "hospital_id", id)
	return nil
}

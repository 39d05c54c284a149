package maid

import (
	"context"
	"fmt"

	"maidmarket/internal/pkg/validator"
)

// UnlockChecker reports whether a customer has paid to see a maid's CV.
type UnlockChecker interface {
	IsUnlocked(ctx context.Context, userID int64, maidID string) (bool, error)
}

type Service struct {
	repo    *Repository
	unlocks UnlockChecker
}

func NewService(repo *Repository, unlocks UnlockChecker) *Service {
	return &Service{repo: repo, unlocks: unlocks}
}

func (s *Service) List(ctx context.Context, f Filters) ([]Maid, int64, error) {
	return s.repo.List(ctx, f)
}

// Get returns the maid and, when userID has unlocked it, the CV.
func (s *Service) Get(ctx context.Context, userID int64, id string) (*Maid, *CV, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if userID == 0 || s.unlocks == nil {
		return m, nil, nil
	}

	unlocked, err := s.unlocks.IsUnlocked(ctx, userID, id)
	if err != nil {
		return nil, nil, fmt.Errorf("check cv unlock: %w", err)
	}
	if !unlocked {
		return m, nil, nil
	}

	cv := m.CV()
	return m, &cv, nil
}

// Create validates and stores a new maid listed by officeID.
func (s *Service) Create(ctx context.Context, officeID int64, m *Maid) (map[string]string, error) {
	if errs := validator.Validate(m); errs != nil {
		return errs, ErrInvalidInput
	}

	m.OfficeID = officeID
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return nil, nil
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

type counselorDirectory interface {
	ListCounselors(ctx context.Context) ([]models.Counselor, error)
}

// CounselorService exposes the public counselor directory.
type CounselorService struct {
	repo   counselorDirectory
	logger *zap.Logger
}

// NewCounselorService instantiates CounselorService.
func NewCounselorService(repo counselorDirectory, logger *zap.Logger) *CounselorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CounselorService{repo: repo, logger: logger}
}

// List returns all active counselors.
func (s *CounselorService) List(ctx context.Context) ([]models.Counselor, error) {
	counselors, err := s.repo.ListCounselors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list counselors")
	}
	return counselors, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/bookbasket/bookbasket-api/internal/dto"
	"github.com/bookbasket/bookbasket-api/internal/models"
	appErrors "github.com/bookbasket/bookbasket-api/pkg/errors"
)

type adminAccountRepository interface {
	ListStudents(ctx context.Context) ([]dto.StudentDTO, error)
	ListDonors(ctx context.Context) ([]dto.DonorDTO, error)
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	UpdateStudentStatus(ctx context.Context, id int64, status models.AccountStatus) (bool, error)
}

type adminNotifier interface {
	Decision(account *models.Account, approved bool)
}

// AdminService implements the approval workflow and the admin rosters.
type AdminService struct {
	repo     adminAccountRepository
	notifier adminNotifier
	logger   *zap.Logger
}

// NewAdminService creates an instance of AdminService.
func NewAdminService(repo adminAccountRepository, notifier adminNotifier, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{repo: repo, notifier: notifier, logger: logger}
}

// ListStudents returns every student with profile data, pending first.
func (s *AdminService) ListStudents(ctx context.Context) ([]dto.StudentDTO, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// ListDonors returns every donor account.
func (s *AdminService) ListDonors(ctx context.Context) ([]dto.DonorDTO, error) {
	donors, err := s.repo.ListDonors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list donors")
	}
	return donors, nil
}

// Approve flips a pending student to accepted.
func (s *AdminService) Approve(ctx context.Context, id int64) error {
	return s.decide(ctx, id, models.StatusAccepted)
}

// Reject flips a pending student to rejected. The account row is kept; a
// rejected student simply can never authenticate, and the decision is final.
func (s *AdminService) Reject(ctx context.Context, id int64) error {
	return s.decide(ctx, id, models.StatusRejected)
}

func (s *AdminService) decide(ctx context.Context, id int64, status models.AccountStatus) error {
	updated, err := s.repo.UpdateStudentStatus(ctx, id, status)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student status")
	}
	if !updated {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to load student for notification", zap.Int64("account_id", id), zap.Error(err))
		}
	} else if s.notifier != nil {
		s.notifier.Decision(account, status == models.StatusAccepted)
	}

	s.logger.Info("student status updated", zap.Int64("account_id", id), zap.String("status", string(status)))
	return nil
}

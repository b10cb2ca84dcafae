package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookbasket/bookbasket-api/internal/models"
	appErrors "github.com/bookbasket/bookbasket-api/pkg/errors"
)

type accountRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, account *models.Account, profile *models.Profile) error
}

type accountNotifier interface {
	Welcome(account *models.Account)
}

// RegisterRequest represents the self-registration payload. Students supply
// the profile fields; donors leave them empty.
type RegisterRequest struct {
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Phone    string      `json:"phone" validate:"required"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=STUDENT DONOR"`

	RollNo     string `json:"roll_no" validate:"required_if=Role STUDENT"`
	College    string `json:"college" validate:"required_if=Role STUDENT"`
	University string `json:"university" validate:"required_if=Role STUDENT"`
	NationalID string `json:"national_id" validate:"omitempty,max=12"`
}

// AccountService handles the account creation workflow.
type AccountService struct {
	repo      accountRepository
	notifier  accountNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAccountService creates an instance of AccountService.
func NewAccountService(repo accountRepository, notifier accountNotifier, validate *validator.Validate, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AccountService{repo: repo, notifier: notifier, validator: validate, logger: logger}
}

// Register creates an account with a role-derived initial status: donors are
// accepted immediately, students start pending. The student profile is
// written in the same transaction as the account. The welcome notification
// is fire-and-forget; its failure never rolls back the registration.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*models.Account, error) {
	if req.Role == "" {
		req.Role = models.RoleStudent
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "email already exists, please use a different email")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	account := &models.Account{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(passwordHash),
		Phone:        req.Phone,
		Role:         req.Role,
		Status:       req.Role.InitialStatus(),
	}

	var profile *models.Profile
	if req.Role == models.RoleStudent {
		profile = &models.Profile{
			RollNo:     req.RollNo,
			College:    req.College,
			University: req.University,
			NationalID: req.NationalID,
		}
	}

	if err := s.repo.Create(ctx, account, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}

	if s.notifier != nil {
		s.notifier.Welcome(account)
	}

	s.logger.Info("account registered",
		zap.Int64("account_id", account.ID),
		zap.String("role", string(account.Role)),
		zap.String("status", string(account.Status)),
	)
	return account, nil
}

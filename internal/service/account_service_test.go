package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookbasket/bookbasket-api/internal/models"
	appErrors "github.com/bookbasket/bookbasket-api/pkg/errors"
)

type mockAccountRepo struct {
	existing       map[string]bool
	createdAccount *models.Account
	createdProfile *models.Profile
	nextID         int64
}

func (m *mockAccountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.existing[email], nil
}

func (m *mockAccountRepo) Create(ctx context.Context, account *models.Account, profile *models.Profile) error {
	if m.nextID == 0 {
		m.nextID = 1
	}
	account.ID = m.nextID
	if profile != nil {
		profile.AccountID = account.ID
		account.Profile = profile
	}
	m.createdAccount = account
	m.createdProfile = profile
	return nil
}

type mockNotifier struct {
	welcomed  []*models.Account
	decisions []bool
}

func (m *mockNotifier) Welcome(account *models.Account) {
	m.welcomed = append(m.welcomed, account)
}

func (m *mockNotifier) Decision(account *models.Account, approved bool) {
	m.decisions = append(m.decisions, approved)
}

func TestAccountServiceRegisterStudent(t *testing.T) {
	repo := &mockAccountRepo{nextID: 7}
	notifier := &mockNotifier{}
	svc := NewAccountService(repo, notifier, nil, nil)

	account, err := svc.Register(context.Background(), RegisterRequest{
		Name:       "Sara",
		Email:      "Sara@Example.com",
		Password:   "secret123",
		Phone:      "0811111111",
		Role:       models.RoleStudent,
		RollNo:     "CS-042",
		College:    "City College",
		University: "State University",
	})
	require.NoError(t, err)

	assert.Equal(t, "sara@example.com", account.Email)
	assert.Equal(t, models.StatusPending, account.Status)
	require.NotNil(t, repo.createdProfile)
	assert.Equal(t, "CS-042", repo.createdProfile.RollNo)

	assert.NotEqual(t, "secret123", account.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("secret123")))

	require.Len(t, notifier.welcomed, 1)
	assert.Equal(t, account, notifier.welcomed[0])
}

func TestAccountServiceRegisterDonorAcceptedImmediately(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := NewAccountService(repo, &mockNotifier{}, nil, nil)

	account, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Dina",
		Email:    "dina@example.com",
		Password: "secret123",
		Phone:    "0800000000",
		Role:     models.RoleDonor,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, account.Status)
	assert.Nil(t, repo.createdProfile)
}

func TestAccountServiceRegisterDefaultsToStudent(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := NewAccountService(repo, &mockNotifier{}, nil, nil)

	account, err := svc.Register(context.Background(), RegisterRequest{
		Name:       "Sara",
		Email:      "sara@example.com",
		Password:   "secret123",
		Phone:      "0811111111",
		RollNo:     "CS-042",
		College:    "City College",
		University: "State University",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, account.Role)
	assert.Equal(t, models.StatusPending, account.Status)
}

func TestAccountServiceRegisterDuplicateEmail(t *testing.T) {
	repo := &mockAccountRepo{existing: map[string]bool{"dina@example.com": true}}
	svc := NewAccountService(repo, &mockNotifier{}, nil, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Dina",
		Email:    "dina@example.com",
		Password: "secret123",
		Phone:    "0800000000",
		Role:     models.RoleDonor,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEmail.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.createdAccount)
}

func TestAccountServiceRegisterStudentRequiresProfile(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := NewAccountService(repo, &mockNotifier{}, nil, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Sara",
		Email:    "sara@example.com",
		Password: "secret123",
		Phone:    "0811111111",
		Role:     models.RoleStudent,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAccountServiceRegisterRejectsAdminRole(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := NewAccountService(repo, &mockNotifier{}, nil, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Eve",
		Email:    "eve@example.com",
		Password: "secret123",
		Phone:    "0833333333",
		Role:     models.RoleAdmin,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

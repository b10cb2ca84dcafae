package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bookbasket/bookbasket-api/internal/dto"
	"github.com/bookbasket/bookbasket-api/internal/models"
)

// AccountRepository provides database access for accounts and profiles.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new instance of AccountRepository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByEmail returns an account by email address.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	const query = `SELECT id, name, email, password_hash, phone, role, status, created_at, updated_at FROM accounts WHERE email = $1 LIMIT 1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return &account, nil
}

// FindByID returns an account by identifier.
func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	const query = `SELECT id, name, email, password_hash, phone, role, status, created_at, updated_at FROM accounts WHERE id = $1 LIMIT 1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return &account, nil
}

// Create inserts the account and, when profile is non-nil, its student
// profile inside one transaction. IDs are assigned by the database.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account, profile *models.Profile) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create account: %w", err)
	}

	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	const insertAccount = `INSERT INTO accounts (name, email, password_hash, phone, role, status, created_at, updated_at)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := tx.QueryRowxContext(ctx, insertAccount,
		account.Name, account.Email, account.PasswordHash, account.Phone,
		account.Role, account.Status, account.CreatedAt, account.UpdatedAt,
	).Scan(&account.ID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert account: %w", err)
	}

	if profile != nil {
		profile.AccountID = account.ID
		const insertProfile = `INSERT INTO profiles (account_id, roll_no, college, university, national_id)
                VALUES ($1, $2, $3, $4, $5) RETURNING id`
		if err := tx.QueryRowxContext(ctx, insertProfile,
			profile.AccountID, profile.RollNo, profile.College, profile.University, profile.NationalID,
		).Scan(&profile.ID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert profile: %w", err)
		}
		account.Profile = profile
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create account: %w", err)
	}
	return nil
}

// ExistsByEmail reports whether any account uses the given email.
func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

// ListStudents returns every student account with its profile, pending first.
func (r *AccountRepository) ListStudents(ctx context.Context) ([]dto.StudentDTO, error) {
	const query = `SELECT a.id, a.name, a.email, a.phone, a.status,
                p.roll_no, p.college, p.university, p.national_id
                FROM accounts a
                LEFT JOIN profiles p ON p.account_id = a.id
                WHERE a.role = $1
                ORDER BY CASE WHEN a.status = $2 THEN 0 ELSE 1 END, a.id`
	students := make([]dto.StudentDTO, 0)
	if err := r.db.SelectContext(ctx, &students, query, models.RoleStudent, models.StatusPending); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ListDonors returns every donor account, accepted first.
func (r *AccountRepository) ListDonors(ctx context.Context) ([]dto.DonorDTO, error) {
	const query = `SELECT id, name, email, phone, status
                FROM accounts
                WHERE role = $1
                ORDER BY CASE WHEN status = $2 THEN 0 ELSE 1 END, id`
	donors := make([]dto.DonorDTO, 0)
	if err := r.db.SelectContext(ctx, &donors, query, models.RoleDonor, models.StatusAccepted); err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	return donors, nil
}

// UpdateStudentStatus decides a pending student account and reports whether a
// matching row existed. Accounts already accepted or rejected never match;
// there is no transition out of a terminal state.
func (r *AccountRepository) UpdateStudentStatus(ctx context.Context, id int64, status models.AccountStatus) (bool, error) {
	const query = `UPDATE accounts SET status = $2, updated_at = $3 WHERE id = $1 AND role = $4 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC(), models.RoleStudent, models.StatusPending)
	if err != nil {
		return false, fmt.Errorf("update student status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update student status rows: %w", err)
	}
	return affected > 0, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bookbasket/bookbasket-api/internal/models"
)

// EBookRepository provides database access for e-book listings.
type EBookRepository struct {
	db *sqlx.DB
}

// NewEBookRepository creates a new instance of EBookRepository.
func NewEBookRepository(db *sqlx.DB) *EBookRepository {
	return &EBookRepository{db: db}
}

// Create inserts a new e-book listing.
func (r *EBookRepository) Create(ctx context.Context, ebook *models.EBook) error {
	now := time.Now().UTC()
	ebook.CreatedAt = now
	ebook.UpdatedAt = now

	const query = `INSERT INTO ebooks (donor_id, title, author, isbn, publisher, category, description, file_path, download_count, created_at, updated_at)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		ebook.DonorID, ebook.Title, ebook.Author, ebook.ISBN, ebook.Publisher, ebook.Category,
		ebook.Description, ebook.FilePath, ebook.DownloadCount, ebook.CreatedAt, ebook.UpdatedAt,
	).Scan(&ebook.ID); err != nil {
		return fmt.Errorf("insert ebook: %w", err)
	}
	return nil
}

// FindByID returns an e-book by identifier.
func (r *EBookRepository) FindByID(ctx context.Context, id int64) (*models.EBook, error) {
	const query = `SELECT id, donor_id, title, author, isbn, publisher, category, description, file_path, download_count, created_at, updated_at
                FROM ebooks WHERE id = $1 LIMIT 1`
	var ebook models.EBook
	if err := r.db.GetContext(ctx, &ebook, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find ebook by id: %w", err)
	}
	return &ebook, nil
}

// ListByDonor returns every e-book owned by the donor.
func (r *EBookRepository) ListByDonor(ctx context.Context, donorID int64) ([]models.EBook, error) {
	const query = `SELECT id, donor_id, title, author, isbn, publisher, category, description, file_path, download_count, created_at, updated_at
                FROM ebooks WHERE donor_id = $1 ORDER BY id`
	ebooks := make([]models.EBook, 0)
	if err := r.db.SelectContext(ctx, &ebooks, query, donorID); err != nil {
		return nil, fmt.Errorf("list ebooks by donor: %w", err)
	}
	return ebooks, nil
}

// ListAvailable returns the full e-book catalog; e-books are not depletable.
func (r *EBookRepository) ListAvailable(ctx context.Context) ([]models.EBook, error) {
	const query = `SELECT id, donor_id, title, author, isbn, publisher, category, description, file_path, download_count, created_at, updated_at
                FROM ebooks ORDER BY id`
	ebooks := make([]models.EBook, 0)
	if err := r.db.SelectContext(ctx, &ebooks, query); err != nil {
		return nil, fmt.Errorf("list available ebooks: %w", err)
	}
	return ebooks, nil
}

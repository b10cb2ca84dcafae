package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bookbasket/bookbasket-api/internal/models"
)

// BookEdit carries the whitelisted mutable fields of a listed book. Title
// and cover image are immutable after creation.
type BookEdit struct {
	Author      string
	ISBN        string
	Publisher   string
	Category    string
	Quantity    int
	Description string
}

// BookRepository provides database access for physical book listings.
type BookRepository struct {
	db *sqlx.DB
}

// NewBookRepository creates a new instance of BookRepository.
func NewBookRepository(db *sqlx.DB) *BookRepository {
	return &BookRepository{db: db}
}

// Create inserts a new book listing.
func (r *BookRepository) Create(ctx context.Context, book *models.Book) error {
	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now

	const query = `INSERT INTO books (donor_id, title, author, isbn, publisher, category, description, quantity, sold_quantity, cover_path, created_at, updated_at)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		book.DonorID, book.Title, book.Author, book.ISBN, book.Publisher, book.Category,
		book.Description, book.Quantity, book.SoldQuantity, book.CoverPath, book.CreatedAt, book.UpdatedAt,
	).Scan(&book.ID); err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// FindByID returns a book by identifier.
func (r *BookRepository) FindByID(ctx context.Context, id int64) (*models.Book, error) {
	const query = `SELECT id, donor_id, title, author, isbn, publisher, category, description, quantity, sold_quantity, cover_path, created_at, updated_at
                FROM books WHERE id = $1 LIMIT 1`
	var book models.Book
	if err := r.db.GetContext(ctx, &book, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find book by id: %w", err)
	}
	return &book, nil
}

// UpdateEditable mutates only the whitelisted fields and reports whether the
// row existed.
func (r *BookRepository) UpdateEditable(ctx context.Context, id int64, edit BookEdit) (bool, error) {
	const query = `UPDATE books SET author = $2, isbn = $3, publisher = $4, category = $5, quantity = $6, description = $7, updated_at = $8
                WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, edit.Author, edit.ISBN, edit.Publisher, edit.Category, edit.Quantity, edit.Description, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update book: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update book rows: %w", err)
	}
	return affected > 0, nil
}

// ListByDonor returns every book owned by the donor.
func (r *BookRepository) ListByDonor(ctx context.Context, donorID int64) ([]models.Book, error) {
	const query = `SELECT id, donor_id, title, author, isbn, publisher, category, description, quantity, sold_quantity, cover_path, created_at, updated_at
                FROM books WHERE donor_id = $1 ORDER BY id`
	books := make([]models.Book, 0)
	if err := r.db.SelectContext(ctx, &books, query, donorID); err != nil {
		return nil, fmt.Errorf("list books by donor: %w", err)
	}
	return books, nil
}

// ListAvailable returns books with remaining stock for the student catalog.
func (r *BookRepository) ListAvailable(ctx context.Context) ([]models.Book, error) {
	const query = `SELECT id, donor_id, title, author, isbn, publisher, category, description, quantity, sold_quantity, cover_path, created_at, updated_at
                FROM books WHERE quantity > 0 ORDER BY id`
	books := make([]models.Book, 0)
	if err := r.db.SelectContext(ctx, &books, query); err != nil {
		return nil, fmt.Errorf("list available books: %w", err)
	}
	return books, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bookbasket/bookbasket-api/internal/dto"
	"github.com/bookbasket/bookbasket-api/internal/models"
	appErrors "github.com/bookbasket/bookbasket-api/pkg/errors"
)

// OrderRepository owns the order table and the two transactional write
// paths that touch catalog counters.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const insertOrder = `INSERT INTO orders (buyer_id, donor_id, book_kind, book_id, category, isbn, quantity, created_at)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

// PlaceOrder reserves stock and appends the order record in one transaction.
// The stock check and the decrement are a single conditional UPDATE, so two
// concurrent orders can never both pass the check: the loser sees zero rows
// affected. Returns ErrInsufficientStock or ErrNotFound accordingly, with
// counters untouched.
func (r *OrderRepository) PlaceOrder(ctx context.Context, order *models.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin place order: %w", err)
	}

	const reserve = `UPDATE books
                SET quantity = quantity - $2, sold_quantity = sold_quantity + $2, updated_at = $3
                WHERE id = $1 AND quantity >= $2`
	res, err := tx.ExecContext(ctx, reserve, order.BookID, order.Quantity, time.Now().UTC())
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("reserve stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("reserve stock rows: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, order.BookID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("probe book: %w", err)
		}
		tx.Rollback() //nolint:errcheck
		if !exists {
			return appErrors.ErrNotFound
		}
		return appErrors.ErrInsufficientStock
	}

	order.BookKind = models.KindBook
	order.CreatedAt = time.Now().UTC()
	if err := tx.QueryRowxContext(ctx, insertOrder,
		order.BuyerID, order.DonorID, order.BookKind, order.BookID,
		order.Category, order.ISBN, order.Quantity, order.CreatedAt,
	).Scan(&order.ID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit place order: %w", err)
	}
	return nil
}

// RecordDownload bumps the download counter and appends the order record.
// E-books have no stock constraint; the increment is unconditional.
func (r *OrderRepository) RecordDownload(ctx context.Context, order *models.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record download: %w", err)
	}

	const bump = `UPDATE ebooks SET download_count = download_count + $2, updated_at = $3 WHERE id = $1`
	res, err := tx.ExecContext(ctx, bump, order.BookID, order.Quantity, time.Now().UTC())
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("bump download count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("bump download count rows: %w", err)
	}
	if affected == 0 {
		tx.Rollback() //nolint:errcheck
		return appErrors.ErrNotFound
	}

	order.BookKind = models.KindEBook
	order.CreatedAt = time.Now().UTC()
	if err := tx.QueryRowxContext(ctx, insertOrder,
		order.BuyerID, order.DonorID, order.BookKind, order.BookID,
		order.Category, order.ISBN, order.Quantity, order.CreatedAt,
	).Scan(&order.ID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert download order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record download: %w", err)
	}
	return nil
}

const orderDetailSelect = `SELECT o.id AS order_id, o.book_kind, o.category, o.isbn, o.quantity, o.created_at AS ordered_at,
                u.id AS buyer_id, u.name AS buyer_name, u.email AS buyer_email, u.phone AS buyer_phone,
                p.roll_no, p.college, p.university,
                d.id AS donor_id, d.name AS donor_name, d.email AS donor_email,
                o.book_id, COALESCE(b.title, e.title) AS book_title
                FROM orders o
                JOIN accounts u ON u.id = o.buyer_id
                LEFT JOIN profiles p ON p.account_id = u.id
                JOIN accounts d ON d.id = o.donor_id
                LEFT JOIN books b ON o.book_kind = 'BOOK' AND b.id = o.book_id
                LEFT JOIN ebooks e ON o.book_kind = 'EBOOK' AND e.id = o.book_id`

// ListAll returns the full joined order report.
func (r *OrderRepository) ListAll(ctx context.Context) ([]dto.OrderDetail, error) {
	query := orderDetailSelect + ` ORDER BY o.id DESC`
	orders := make([]dto.OrderDetail, 0)
	if err := r.db.SelectContext(ctx, &orders, query); err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	return orders, nil
}

// ListByDonor returns orders placed against one donor's listings.
func (r *OrderRepository) ListByDonor(ctx context.Context, donorID int64) ([]dto.OrderDetail, error) {
	query := orderDetailSelect + ` WHERE o.donor_id = $1 ORDER BY o.id DESC`
	orders := make([]dto.OrderDetail, 0)
	if err := r.db.SelectContext(ctx, &orders, query, donorID); err != nil {
		return nil, fmt.Errorf("list orders by donor: %w", err)
	}
	return orders, nil
}

// ListByBuyer returns one student's physical-book orders. E-book downloads
// are excluded from the student history view.
func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]dto.OrderDetail, error) {
	query := orderDetailSelect + ` WHERE o.buyer_id = $1 AND o.book_kind <> $2 ORDER BY o.id DESC`
	orders := make([]dto.OrderDetail, 0)
	if err := r.db.SelectContext(ctx, &orders, query, buyerID, models.KindEBook); err != nil {
		return nil, fmt.Errorf("list orders by buyer: %w", err)
	}
	return orders, nil
}

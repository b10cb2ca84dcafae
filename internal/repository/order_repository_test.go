package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbasket/bookbasket-api/internal/models"
	appErrors "github.com/bookbasket/bookbasket-api/pkg/errors"
)

func TestOrderRepositoryPlaceOrder(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE books").
		WithArgs(int64(10), 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(5), int64(2), models.KindBook, int64(10), "Fiction", "978-1", 2, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(31)))
	mock.ExpectCommit()

	order := &models.Order{BuyerID: 5, DonorID: 2, BookID: 10, Category: "Fiction", ISBN: "978-1", Quantity: 2}
	require.NoError(t, repo.PlaceOrder(context.Background(), order))
	assert.Equal(t, int64(31), order.ID)
	assert.Equal(t, models.KindBook, order.BookKind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositoryPlaceOrderInsufficientStock(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE books").
		WithArgs(int64(10), 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	order := &models.Order{BuyerID: 5, DonorID: 2, BookID: 10, Quantity: 5}
	err := repo.PlaceOrder(context.Background(), order)
	assert.ErrorIs(t, err, appErrors.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositoryPlaceOrderBookMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE books").
		WithArgs(int64(404), 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	order := &models.Order{BuyerID: 5, DonorID: 2, BookID: 404, Quantity: 1}
	err := repo.PlaceOrder(context.Background(), order)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositoryRecordDownload(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ebooks").
		WithArgs(int64(8), 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(5), int64(3), models.KindEBook, int64(8), models.EBookCategory, "978-2", 1, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectCommit()

	order := &models.Order{BuyerID: 5, DonorID: 3, BookID: 8, Category: models.EBookCategory, ISBN: "978-2", Quantity: 1}
	require.NoError(t, repo.RecordDownload(context.Background(), order))
	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, models.KindEBook, order.BookKind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositoryRecordDownloadMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ebooks").
		WithArgs(int64(99), 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	order := &models.Order{BuyerID: 5, DonorID: 3, BookID: 99, Quantity: 1}
	err := repo.RecordDownload(context.Background(), order)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositoryListByBuyerExcludesDownloads(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOrderRepository(db)

	rows := sqlmock.NewRows([]string{
		"order_id", "book_kind", "category", "isbn", "quantity", "ordered_at",
		"buyer_id", "buyer_name", "buyer_email", "buyer_phone", "roll_no", "college", "university",
		"donor_id", "donor_name", "donor_email", "book_id", "book_title",
	}).AddRow(int64(31), models.KindBook, "Fiction", "978-1", 2, time.Now(),
		int64(5), "Sara", "sara@example.com", "0811111111", "CS-042", "City College", "State University",
		int64(2), "Dina", "dina@example.com", int64(10), "Go in Action")
	mock.ExpectQuery("SELECT o.id AS order_id").
		WithArgs(int64(5), models.KindEBook).
		WillReturnRows(rows)

	orders, err := repo.ListByBuyer(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.KindBook, orders[0].BookKind)
	assert.Equal(t, "Dina", orders[0].DonorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bookbasket/bookbasket-api/internal/models"
	appErrors "github.com/bookbasket/bookbasket-api/pkg/errors"
)

type orderRepository interface {
	PlaceOrder(ctx context.Context, order *models.Order) error
	RecordDownload(ctx context.Context, order *models.Order) error
}

type orderBookRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Book, error)
}

type orderEBookRepository interface {
	FindByID(ctx context.Context, id int64) (*models.EBook, error)
}

type catalogInvalidator interface {
	InvalidateCatalog(ctx context.Context)
}

// PlaceOrderRequest is the student order payload.
type PlaceOrderRequest struct {
	BookID   int64 `json:"book_id" validate:"required,min=1"`
	Quantity int   `json:"quantity" validate:"required,min=1"`
}

// DownloadRequest is the e-book download payload.
type DownloadRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// OrderService handles student orders and e-book downloads.
type OrderService struct {
	orders    orderRepository
	books     orderBookRepository
	ebooks    orderEBookRepository
	catalog   catalogInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOrderService creates an instance of OrderService.
func NewOrderService(orders orderRepository, books orderBookRepository, ebooks orderEBookRepository, catalog catalogInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &OrderService{
		orders:    orders,
		books:     books,
		ebooks:    ebooks,
		catalog:   catalog,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// PlaceOrder reserves stock for a physical book and records the order. The
// category and ISBN are snapshotted from the listing at order time.
func (s *OrderService) PlaceOrder(ctx context.Context, buyerID int64, req PlaceOrderRequest) (*models.Order, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid order payload")
	}

	book, err := s.books.FindByID(ctx, req.BookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "book not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load book")
	}

	order := &models.Order{
		BuyerID:  buyerID,
		DonorID:  book.DonorID,
		BookID:   book.ID,
		Category: book.Category,
		ISBN:     book.ISBN,
		Quantity: req.Quantity,
	}
	if err := s.orders.PlaceOrder(ctx, order); err != nil {
		switch {
		case errors.Is(err, appErrors.ErrNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "book not found")
		case errors.Is(err, appErrors.ErrInsufficientStock):
			return nil, appErrors.Clone(appErrors.ErrInsufficientStock, "not enough copies available")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to place order")
		}
	}

	if s.catalog != nil {
		s.catalog.InvalidateCatalog(ctx)
	}
	s.metrics.OrderPlaced()
	s.logger.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("buyer_id", buyerID),
		zap.Int64("book_id", book.ID),
		zap.Int("quantity", req.Quantity))
	return order, nil
}

// DownloadEBook records a download order for the student and returns the
// listing so the caller can serve the stored file. Downloads never fail on
// stock; the counter only grows.
func (s *OrderService) DownloadEBook(ctx context.Context, buyerID, ebookID int64, req DownloadRequest) (*models.EBook, *models.Order, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid download payload")
	}

	ebook, err := s.ebooks.FindByID(ctx, ebookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "ebook not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ebook")
	}

	order := &models.Order{
		BuyerID:  buyerID,
		DonorID:  ebook.DonorID,
		BookID:   ebook.ID,
		Category: models.EBookCategory,
		ISBN:     ebook.ISBN,
		Quantity: req.Quantity,
	}
	if err := s.orders.RecordDownload(ctx, order); err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "ebook not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record download")
	}

	s.metrics.EBookDownloaded()
	s.logger.Info("ebook downloaded",
		zap.Int64("order_id", order.ID),
		zap.Int64("buyer_id", buyerID),
		zap.Int64("ebook_id", ebookID),
		zap.Int("quantity", req.Quantity))
	return ebook, order, nil
}

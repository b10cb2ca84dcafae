package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bookbasket/bookbasket-api/internal/models"
	"github.com/bookbasket/bookbasket-api/internal/repository"
	appErrors "github.com/bookbasket/bookbasket-api/pkg/errors"
)

const (
	catalogBooksKey  = "catalog:books:available"
	catalogEBooksKey = "catalog:ebooks:available"

	coversSubdir = "covers"
	ebooksSubdir = "ebooks"
)

type catalogBookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	UpdateEditable(ctx context.Context, id int64, edit repository.BookEdit) (bool, error)
	ListByDonor(ctx context.Context, donorID int64) ([]models.Book, error)
	ListAvailable(ctx context.Context) ([]models.Book, error)
}

type catalogEBookRepository interface {
	Create(ctx context.Context, ebook *models.EBook) error
	ListByDonor(ctx context.Context, donorID int64) ([]models.EBook, error)
	ListAvailable(ctx context.Context) ([]models.EBook, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type uploadStore interface {
	SaveStream(subdir, originalName string, r io.Reader) (string, error)
}

// BookMetadata is the create payload shared by books and e-books.
type BookMetadata struct {
	Title       string `form:"title" validate:"required,max=255"`
	Author      string `form:"author" validate:"required,max=255"`
	ISBN        string `form:"isbn" validate:"required,max=50"`
	Publisher   string `form:"publisher" validate:"max=255"`
	Category    string `form:"category" validate:"required,max=100"`
	Description string `form:"description"`
	Quantity    int    `form:"quantity" validate:"min=0"`
}

// UpdateBookRequest carries the whitelisted editable fields. Title and cover
// are immutable after creation.
type UpdateBookRequest struct {
	Author      string `json:"author" validate:"required,max=255"`
	ISBN        string `json:"isbn" validate:"required,max=50"`
	Publisher   string `json:"publisher" validate:"max=255"`
	Category    string `json:"category" validate:"required,max=100"`
	Quantity    int    `json:"quantity" validate:"min=0"`
	Description string `json:"description"`
}

// CatalogService manages donor listings and the student-facing catalog.
type CatalogService struct {
	books        catalogBookRepository
	ebooks       catalogEBookRepository
	cache        catalogCache
	store        uploadStore
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	cacheTTL     time.Duration
	maxEBookSize int64
}

// CatalogConfig tunes the catalog service.
type CatalogConfig struct {
	CacheTTL     time.Duration
	MaxEBookSize int64
}

// NewCatalogService creates an instance of CatalogService.
func NewCatalogService(books catalogBookRepository, ebooks catalogEBookRepository, cache catalogCache, store uploadStore, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg CatalogConfig) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.MaxEBookSize <= 0 {
		cfg.MaxEBookSize = 20 * 1024 * 1024
	}
	return &CatalogService{
		books:        books,
		ebooks:       ebooks,
		cache:        cache,
		store:        store,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		cacheTTL:     cfg.CacheTTL,
		maxEBookSize: cfg.MaxEBookSize,
	}
}

// AddBook stores the cover under a generated unique name and persists the
// listing with sold quantity zero. A missing cover is a validation error.
func (s *CatalogService) AddBook(ctx context.Context, donorID int64, meta BookMetadata, coverName string, cover io.Reader) (*models.Book, error) {
	if err := s.validator.Struct(meta); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid book payload")
	}
	if cover == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cover image is required")
	}

	coverPath, err := s.store.SaveStream(coversSubdir, coverName, cover)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store cover image")
	}

	book := &models.Book{
		DonorID:      donorID,
		Title:        meta.Title,
		Author:       meta.Author,
		ISBN:         meta.ISBN,
		Publisher:    meta.Publisher,
		Category:     meta.Category,
		Description:  meta.Description,
		Quantity:     meta.Quantity,
		SoldQuantity: 0,
		CoverPath:    coverPath,
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create book")
	}

	s.invalidate(ctx, catalogBooksKey)
	s.logger.Info("book listed", zap.Int64("book_id", book.ID), zap.Int64("donor_id", donorID))
	return book, nil
}

// AddEBook stores the payload under a generated unique name and persists the
// listing with a zero download counter. Files above the size limit are
// rejected before anything is written.
func (s *CatalogService) AddEBook(ctx context.Context, donorID int64, meta BookMetadata, fileName string, file io.Reader, size int64) (*models.EBook, error) {
	if err := s.validator.Struct(meta); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ebook payload")
	}
	if file == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "ebook file is required")
	}
	if size > s.maxEBookSize {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, "ebook file must be at most 20 MiB")
	}

	filePath, err := s.store.SaveStream(ebooksSubdir, fileName, file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store ebook file")
	}

	ebook := &models.EBook{
		DonorID:       donorID,
		Title:         meta.Title,
		Author:        meta.Author,
		ISBN:          meta.ISBN,
		Publisher:     meta.Publisher,
		Category:      meta.Category,
		Description:   meta.Description,
		FilePath:      filePath,
		DownloadCount: 0,
	}
	if err := s.ebooks.Create(ctx, ebook); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create ebook")
	}

	s.invalidate(ctx, catalogEBooksKey)
	s.logger.Info("ebook listed", zap.Int64("ebook_id", ebook.ID), zap.Int64("donor_id", donorID))
	return ebook, nil
}

// UpdateBook mutates only the whitelisted fields of an existing listing.
func (s *CatalogService) UpdateBook(ctx context.Context, id int64, req UpdateBookRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	updated, err := s.books.UpdateEditable(ctx, id, repository.BookEdit{
		Author:      req.Author,
		ISBN:        req.ISBN,
		Publisher:   req.Publisher,
		Category:    req.Category,
		Quantity:    req.Quantity,
		Description: req.Description,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update book")
	}
	if !updated {
		return appErrors.Clone(appErrors.ErrNotFound, "book not found")
	}

	s.invalidate(ctx, catalogBooksKey)
	return nil
}

// BooksByDonor returns a donor's own book listings.
func (s *CatalogService) BooksByDonor(ctx context.Context, donorID int64) ([]models.Book, error) {
	books, err := s.books.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list books")
	}
	return books, nil
}

// EBooksByDonor returns a donor's own e-book listings.
func (s *CatalogService) EBooksByDonor(ctx context.Context, donorID int64) ([]models.EBook, error) {
	ebooks, err := s.ebooks.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ebooks")
	}
	return ebooks, nil
}

// AvailableBooks returns the student-facing book catalog, cached with a TTL.
func (s *CatalogService) AvailableBooks(ctx context.Context) ([]models.Book, error) {
	var cached []models.Book
	if s.cacheGet(ctx, catalogBooksKey, &cached) {
		return cached, nil
	}

	books, err := s.books.ListAvailable(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available books")
	}
	s.cacheSet(ctx, catalogBooksKey, books)
	return books, nil
}

// AvailableEBooks returns the student-facing e-book catalog, cached with a TTL.
func (s *CatalogService) AvailableEBooks(ctx context.Context) ([]models.EBook, error) {
	var cached []models.EBook
	if s.cacheGet(ctx, catalogEBooksKey, &cached) {
		return cached, nil
	}

	ebooks, err := s.ebooks.ListAvailable(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available ebooks")
	}
	s.cacheSet(ctx, catalogEBooksKey, ebooks)
	return ebooks, nil
}

// InvalidateCatalog clears the cached listings after a stock mutation.
func (s *CatalogService) InvalidateCatalog(ctx context.Context) {
	s.invalidate(ctx, catalogBooksKey, catalogEBooksKey)
}

func (s *CatalogService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	if err := s.cache.Get(ctx, key, dest); err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.CacheMiss()
		}
		return false
	}
	if s.metrics != nil {
		s.metrics.CacheHit()
	}
	return true
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *CatalogService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

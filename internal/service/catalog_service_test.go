package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbasket/bookbasket-api/internal/models"
	"github.com/bookbasket/bookbasket-api/internal/repository"
	appErrors "github.com/bookbasket/bookbasket-api/pkg/errors"
)

type mockBookRepo struct {
	created       *models.Book
	updateOK      bool
	updateEdit    repository.BookEdit
	available     []models.Book
	availableHits int
}

func (m *mockBookRepo) Create(ctx context.Context, book *models.Book) error {
	book.ID = 10
	m.created = book
	return nil
}

func (m *mockBookRepo) UpdateEditable(ctx context.Context, id int64, edit repository.BookEdit) (bool, error) {
	m.updateEdit = edit
	return m.updateOK, nil
}

func (m *mockBookRepo) ListByDonor(ctx context.Context, donorID int64) ([]models.Book, error) {
	return []models.Book{}, nil
}

func (m *mockBookRepo) ListAvailable(ctx context.Context) ([]models.Book, error) {
	m.availableHits++
	return m.available, nil
}

type mockEBookRepo struct {
	created *models.EBook
}

func (m *mockEBookRepo) Create(ctx context.Context, ebook *models.EBook) error {
	ebook.ID = 8
	m.created = ebook
	return nil
}

func (m *mockEBookRepo) ListByDonor(ctx context.Context, donorID int64) ([]models.EBook, error) {
	return []models.EBook{}, nil
}

func (m *mockEBookRepo) ListAvailable(ctx context.Context) ([]models.EBook, error) {
	return []models.EBook{}, nil
}

type mockCache struct {
	store   map[string][]models.Book
	deleted []string
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	books, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*[]models.Book)) = books
	return nil
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.store == nil {
		m.store = make(map[string][]models.Book)
	}
	if books, ok := value.([]models.Book); ok {
		m.store[key] = books
	}
	return nil
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	m.deleted = append(m.deleted, keys...)
	for _, key := range keys {
		delete(m.store, key)
	}
	return nil
}

type mockStore struct {
	saved map[string]string
}

func (m *mockStore) SaveStream(subdir, originalName string, r io.Reader) (string, error) {
	if m.saved == nil {
		m.saved = make(map[string]string)
	}
	path := "/uploads/" + subdir + "/gen_" + originalName
	m.saved[subdir] = path
	return path, nil
}

func validMeta() BookMetadata {
	return BookMetadata{
		Title:    "Go in Action",
		Author:   "W. Kennedy",
		ISBN:     "978-1",
		Category: "Programming",
		Quantity: 3,
	}
}

func newCatalogService(books *mockBookRepo, ebooks *mockEBookRepo, cache *mockCache, store *mockStore) *CatalogService {
	return NewCatalogService(books, ebooks, cache, store, nil, nil, nil, CatalogConfig{})
}

func TestCatalogServiceAddBook(t *testing.T) {
	books := &mockBookRepo{}
	cache := &mockCache{}
	store := &mockStore{}
	svc := newCatalogService(books, &mockEBookRepo{}, cache, store)

	book, err := svc.AddBook(context.Background(), 2, validMeta(), "go.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, int64(10), book.ID)
	assert.Equal(t, int64(2), book.DonorID)
	assert.Zero(t, book.SoldQuantity)
	assert.Equal(t, "/uploads/covers/gen_go.png", book.CoverPath)
	assert.Contains(t, cache.deleted, catalogBooksKey)
}

func TestCatalogServiceAddBookRequiresCover(t *testing.T) {
	svc := newCatalogService(&mockBookRepo{}, &mockEBookRepo{}, &mockCache{}, &mockStore{})

	_, err := svc.AddBook(context.Background(), 2, validMeta(), "", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCatalogServiceAddEBook(t *testing.T) {
	ebooks := &mockEBookRepo{}
	cache := &mockCache{}
	svc := newCatalogService(&mockBookRepo{}, ebooks, cache, &mockStore{})

	ebook, err := svc.AddEBook(context.Background(), 3, validMeta(), "book.pdf", strings.NewReader("pdf-bytes"), 1024)
	require.NoError(t, err)

	assert.Equal(t, int64(8), ebook.ID)
	assert.Zero(t, ebook.DownloadCount)
	assert.Equal(t, "/uploads/ebooks/gen_book.pdf", ebook.FilePath)
	assert.Contains(t, cache.deleted, catalogEBooksKey)
}

func TestCatalogServiceAddEBookTooLarge(t *testing.T) {
	ebooks := &mockEBookRepo{}
	svc := newCatalogService(&mockBookRepo{}, ebooks, &mockCache{}, &mockStore{})

	_, err := svc.AddEBook(context.Background(), 3, validMeta(), "big.pdf", strings.NewReader("x"), 21*1024*1024)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPayloadTooLarge.Code, appErrors.FromError(err).Code)
	assert.Nil(t, ebooks.created)
}

func TestCatalogServiceUpdateBook(t *testing.T) {
	books := &mockBookRepo{updateOK: true}
	cache := &mockCache{}
	svc := newCatalogService(books, &mockEBookRepo{}, cache, &mockStore{})

	err := svc.UpdateBook(context.Background(), 10, UpdateBookRequest{
		Author:   "W. Kennedy",
		ISBN:     "978-1",
		Category: "Programming",
		Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, books.updateEdit.Quantity)
	assert.Contains(t, cache.deleted, catalogBooksKey)
}

func TestCatalogServiceUpdateBookNotFound(t *testing.T) {
	svc := newCatalogService(&mockBookRepo{updateOK: false}, &mockEBookRepo{}, &mockCache{}, &mockStore{})

	err := svc.UpdateBook(context.Background(), 99, UpdateBookRequest{
		Author:   "W. Kennedy",
		ISBN:     "978-1",
		Category: "Programming",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCatalogServiceAvailableBooksCached(t *testing.T) {
	books := &mockBookRepo{available: []models.Book{{ID: 10, Title: "Go in Action", Quantity: 3}}}
	cache := &mockCache{}
	svc := newCatalogService(books, &mockEBookRepo{}, cache, &mockStore{})

	first, err := svc.AvailableBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.AvailableBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)

	assert.Equal(t, 1, books.availableHits)
}

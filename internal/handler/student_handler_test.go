package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbasket/bookbasket-api/internal/dto"
	"github.com/bookbasket/bookbasket-api/internal/middleware"
	"github.com/bookbasket/bookbasket-api/internal/models"
	"github.com/bookbasket/bookbasket-api/internal/service"
	appErrors "github.com/bookbasket/bookbasket-api/pkg/errors"
)

type studentCatalogMock struct {
	books  []models.Book
	ebooks []models.EBook
}

func (m *studentCatalogMock) AvailableBooks(ctx context.Context) ([]models.Book, error) {
	return m.books, nil
}

func (m *studentCatalogMock) AvailableEBooks(ctx context.Context) ([]models.EBook, error) {
	return m.ebooks, nil
}

type studentOrderMock struct {
	order       *models.Order
	orderErr    error
	ebook       *models.EBook
	download    *models.Order
	downloadErr error
	buyerID     int64
	quantity    int
}

func (m *studentOrderMock) PlaceOrder(ctx context.Context, buyerID int64, req service.PlaceOrderRequest) (*models.Order, error) {
	m.buyerID = buyerID
	return m.order, m.orderErr
}

func (m *studentOrderMock) DownloadEBook(ctx context.Context, buyerID, ebookID int64, req service.DownloadRequest) (*models.EBook, *models.Order, error) {
	m.buyerID = buyerID
	m.quantity = req.Quantity
	return m.ebook, m.download, m.downloadErr
}

type studentReportMock struct {
	orders []dto.OrderDetail
}

func (m *studentReportMock) StudentOrders(ctx context.Context, buyerID int64) ([]dto.OrderDetail, error) {
	return m.orders, nil
}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{AccountID: 5, Email: "sara@example.com", Role: models.RoleStudent}
}

func TestStudentHandlerBooks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&studentCatalogMock{books: []models.Book{{ID: 10, Title: "Go in Action"}}}, &studentOrderMock{}, &studentReportMock{})

	c, w := newGinContext(http.MethodGet, "/student/books", nil)

	handler.Books(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Go in Action")
}

func TestStudentHandlerPlaceOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockOrders := &studentOrderMock{order: &models.Order{ID: 31, BookKind: models.KindBook}}
	handler := NewStudentHandler(&studentCatalogMock{}, mockOrders, &studentReportMock{})

	payload, _ := json.Marshal(service.PlaceOrderRequest{BookID: 10, Quantity: 2})
	c, w := newGinContext(http.MethodPost, "/student/orders", payload)
	c.Set(middleware.ContextUserKey, studentClaims())

	handler.PlaceOrder(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(5), mockOrders.buyerID)
}

func TestStudentHandlerPlaceOrderInsufficientStock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockOrders := &studentOrderMock{orderErr: appErrors.ErrInsufficientStock}
	handler := NewStudentHandler(&studentCatalogMock{}, mockOrders, &studentReportMock{})

	payload, _ := json.Marshal(service.PlaceOrderRequest{BookID: 10, Quantity: 99})
	c, w := newGinContext(http.MethodPost, "/student/orders", payload)
	c.Set(middleware.ContextUserKey, studentClaims())

	handler.PlaceOrder(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentHandlerPlaceOrderWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&studentCatalogMock{}, &studentOrderMock{}, &studentReportMock{})

	payload, _ := json.Marshal(service.PlaceOrderRequest{BookID: 10, Quantity: 1})
	c, w := newGinContext(http.MethodPost, "/student/orders", payload)

	handler.PlaceOrder(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStudentHandlerDownloadEBook(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockOrders := &studentOrderMock{
		ebook:    &models.EBook{ID: 8, Title: "Concurrency in Go", FilePath: "/uploads/ebooks/xyz_cig.pdf"},
		download: &models.Order{ID: 42, BookKind: models.KindEBook},
	}
	handler := NewStudentHandler(&studentCatalogMock{}, mockOrders, &studentReportMock{})

	payload, _ := json.Marshal(service.DownloadRequest{Quantity: 2})
	c, w := newGinContext(http.MethodPost, "/student/ebooks/8/download", payload)
	c.Params = gin.Params{{Key: "id", Value: "8"}}
	c.Set(middleware.ContextUserKey, studentClaims())

	handler.DownloadEBook(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "/uploads/ebooks/xyz_cig.pdf")
	assert.Equal(t, 2, mockOrders.quantity)
}

func TestStudentHandlerDownloadEBookMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&studentCatalogMock{}, &studentOrderMock{}, &studentReportMock{})

	c, w := newGinContext(http.MethodPost, "/student/ebooks/8/download", []byte("{"))
	c.Params = gin.Params{{Key: "id", Value: "8"}}
	c.Set(middleware.ContextUserKey, studentClaims())

	handler.DownloadEBook(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentHandlerDownloadEBookNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockOrders := &studentOrderMock{downloadErr: appErrors.ErrNotFound}
	handler := NewStudentHandler(&studentCatalogMock{}, mockOrders, &studentReportMock{})

	payload, _ := json.Marshal(service.DownloadRequest{Quantity: 1})
	c, w := newGinContext(http.MethodPost, "/student/ebooks/99/download", payload)
	c.Params = gin.Params{{Key: "id", Value: "99"}}
	c.Set(middleware.ContextUserKey, studentClaims())

	handler.DownloadEBook(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestStudentHandlerOrders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&studentCatalogMock{}, &studentOrderMock{}, &studentReportMock{orders: []dto.OrderDetail{}})

	c, w := newGinContext(http.MethodGet, "/student/orders", nil)
	c.Set(middleware.ContextUserKey, studentClaims())

	handler.Orders(c)
	require.Equal(t, http.StatusOK, w.Code)
}

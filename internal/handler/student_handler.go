package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookbasket/bookbasket-api/internal/dto"
	"github.com/bookbasket/bookbasket-api/internal/models"
	"github.com/bookbasket/bookbasket-api/internal/service"
	appErrors "github.com/bookbasket/bookbasket-api/pkg/errors"
	"github.com/bookbasket/bookbasket-api/pkg/response"
)

type studentCatalogService interface {
	AvailableBooks(ctx context.Context) ([]models.Book, error)
	AvailableEBooks(ctx context.Context) ([]models.EBook, error)
}

type studentOrderService interface {
	PlaceOrder(ctx context.Context, buyerID int64, req service.PlaceOrderRequest) (*models.Order, error)
	DownloadEBook(ctx context.Context, buyerID, ebookID int64, req service.DownloadRequest) (*models.EBook, *models.Order, error)
}

type studentReportService interface {
	StudentOrders(ctx context.Context, buyerID int64) ([]dto.OrderDetail, error)
}

// StudentHandler exposes the student catalog and ordering endpoints.
type StudentHandler struct {
	catalog studentCatalogService
	orders  studentOrderService
	reports studentReportService
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(catalog studentCatalogService, orders studentOrderService, reports studentReportService) *StudentHandler {
	return &StudentHandler{catalog: catalog, orders: orders, reports: reports}
}

// Books godoc
// @Summary Browse available books
// @Description Physical books with at least one copy in stock
// @Tags Student
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/books [get]
func (h *StudentHandler) Books(c *gin.Context) {
	books, err := h.catalog.AvailableBooks(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, books)
}

// EBooks godoc
// @Summary Browse available e-books
// @Tags Student
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/ebooks [get]
func (h *StudentHandler) EBooks(c *gin.Context) {
	ebooks, err := h.catalog.AvailableEBooks(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ebooks)
}

// PlaceOrder godoc
// @Summary Order a physical book
// @Description Reserves stock atomically; fails when fewer copies remain than requested
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body service.PlaceOrderRequest true "Order payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/orders [post]
func (h *StudentHandler) PlaceOrder(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid order payload"))
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), claims.AccountID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, order)
}

// DownloadEBook godoc
// @Summary Download an e-book
// @Description Records the download and returns the file location
// @Tags Student
// @Produce json
// @Param id path int true "E-book ID"
// @Param payload body service.DownloadRequest true "Download request"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/ebooks/{id}/download [post]
func (h *StudentHandler) DownloadEBook(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req service.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid download payload"))
		return
	}

	ebook, order, err := h.orders.DownloadEBook(c.Request.Context(), claims.AccountID, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{
		"order_id":     order.ID,
		"title":        ebook.Title,
		"download_url": ebook.FilePath,
	})
}

// Orders godoc
// @Summary Own physical-book order history
// @Tags Student
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/orders [get]
func (h *StudentHandler) Orders(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	orders, err := h.reports.StudentOrders(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, orders)
}

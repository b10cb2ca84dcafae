package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookbasket/bookbasket-api/internal/dto"
	"github.com/bookbasket/bookbasket-api/internal/models"
	"github.com/bookbasket/bookbasket-api/internal/service"
	appErrors "github.com/bookbasket/bookbasket-api/pkg/errors"
	"github.com/bookbasket/bookbasket-api/pkg/response"
)

type donorCatalogService interface {
	AddBook(ctx context.Context, donorID int64, meta service.BookMetadata, coverName string, cover io.Reader) (*models.Book, error)
	AddEBook(ctx context.Context, donorID int64, meta service.BookMetadata, fileName string, file io.Reader, size int64) (*models.EBook, error)
	UpdateBook(ctx context.Context, id int64, req service.UpdateBookRequest) error
	BooksByDonor(ctx context.Context, donorID int64) ([]models.Book, error)
	EBooksByDonor(ctx context.Context, donorID int64) ([]models.EBook, error)
}

type donorReportService interface {
	DonorOrders(ctx context.Context, donorID int64) ([]dto.OrderDetail, error)
}

// DonorHandler exposes the donor listing and sales endpoints.
type DonorHandler struct {
	catalog donorCatalogService
	reports donorReportService
}

// NewDonorHandler creates a new handler.
func NewDonorHandler(catalog donorCatalogService, reports donorReportService) *DonorHandler {
	return &DonorHandler{catalog: catalog, reports: reports}
}

// AddBook godoc
// @Summary List a physical book for donation
// @Description Multipart form: book metadata plus a required cover image
// @Tags Donor
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param author formData string true "Author"
// @Param isbn formData string true "ISBN"
// @Param publisher formData string false "Publisher"
// @Param category formData string true "Category"
// @Param quantity formData int true "Quantity"
// @Param description formData string false "Description"
// @Param cover formData file true "Cover image"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /donor/books [post]
func (h *DonorHandler) AddBook(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var meta service.BookMetadata
	if err := c.ShouldBind(&meta); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid book payload"))
		return
	}

	name, file, _, err := openFormFile(c, "cover")
	if err != nil {
		response.Error(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	book, err := h.catalog.AddBook(c.Request.Context(), claims.AccountID, meta, name, readerOrNil(file))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, book)
}

// AddEBook godoc
// @Summary List an e-book for donation
// @Description Multipart form: book metadata plus the e-book file (max 20 MiB)
// @Tags Donor
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param author formData string true "Author"
// @Param isbn formData string true "ISBN"
// @Param publisher formData string false "Publisher"
// @Param category formData string true "Category"
// @Param description formData string false "Description"
// @Param file formData file true "E-book file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /donor/ebooks [post]
func (h *DonorHandler) AddEBook(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var meta service.BookMetadata
	if err := c.ShouldBind(&meta); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid ebook payload"))
		return
	}

	name, file, size, err := openFormFile(c, "file")
	if err != nil {
		response.Error(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	ebook, err := h.catalog.AddEBook(c.Request.Context(), claims.AccountID, meta, name, readerOrNil(file), size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ebook)
}

// UpdateBook godoc
// @Summary Update an existing book listing
// @Description Only author, ISBN, publisher, category, quantity and description can change
// @Tags Donor
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param payload body service.UpdateBookRequest true "Editable fields"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /donor/books/{id} [put]
func (h *DonorHandler) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req service.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}

	if err := h.catalog.UpdateBook(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "book updated")
}

// Books godoc
// @Summary List own book listings
// @Tags Donor
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /donor/books [get]
func (h *DonorHandler) Books(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	books, err := h.catalog.BooksByDonor(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, books)
}

// EBooks godoc
// @Summary List own e-book listings
// @Tags Donor
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /donor/ebooks [get]
func (h *DonorHandler) EBooks(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	ebooks, err := h.catalog.EBooksByDonor(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ebooks)
}

// Orders godoc
// @Summary Orders placed against own listings
// @Tags Donor
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /donor/orders [get]
func (h *DonorHandler) Orders(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	orders, err := h.reports.DonorOrders(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, orders)
}

// openFormFile returns the upload's original name, an opened reader and the
// declared size. A missing file is not an error here; the service decides
// whether the upload is mandatory.
func openFormFile(c *gin.Context, field string) (string, multipart.File, int64, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil, 0, nil
		}
		return "", nil, 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart payload")
	}
	file, err := header.Open()
	if err != nil {
		return "", nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload")
	}
	return header.Filename, file, header.Size, nil
}

func readerOrNil(file multipart.File) io.Reader {
	if file == nil {
		return nil
	}
	return file
}

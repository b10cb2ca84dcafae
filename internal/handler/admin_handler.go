package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookbasket/bookbasket-api/internal/dto"
	"github.com/bookbasket/bookbasket-api/internal/service"
	appErrors "github.com/bookbasket/bookbasket-api/pkg/errors"
	"github.com/bookbasket/bookbasket-api/pkg/response"
)

type approvalService interface {
	ListStudents(ctx context.Context) ([]dto.StudentDTO, error)
	ListDonors(ctx context.Context) ([]dto.DonorDTO, error)
	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64) error
}

type adminReportService interface {
	AllOrders(ctx context.Context) ([]dto.OrderDetail, error)
	ExportOrders(ctx context.Context, format string) (*service.ExportResult, error)
}

// AdminHandler exposes the admin approval and reporting endpoints.
type AdminHandler struct {
	admin   approvalService
	reports adminReportService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(admin approvalService, reports adminReportService) *AdminHandler {
	return &AdminHandler{admin: admin, reports: reports}
}

// ListStudents godoc
// @Summary List student accounts
// @Description List all students with their academic profiles, pending first
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/students [get]
func (h *AdminHandler) ListStudents(c *gin.Context) {
	students, err := h.admin.ListStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// ListDonors godoc
// @Summary List donor accounts
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/donors [get]
func (h *AdminHandler) ListDonors(c *gin.Context) {
	donors, err := h.admin.ListDonors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, donors)
}

// ApproveStudent godoc
// @Summary Approve a pending student
// @Tags Admin
// @Produce json
// @Param id path int true "Student account ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{id}/approve [put]
func (h *AdminHandler) ApproveStudent(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.admin.Approve(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "student approved")
}

// RejectStudent godoc
// @Summary Reject a pending student
// @Description Marks the student rejected; the account record is retained
// @Tags Admin
// @Produce json
// @Param id path int true "Student account ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{id}/reject [put]
func (h *AdminHandler) RejectStudent(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.admin.Reject(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "student rejected")
}

// Orders godoc
// @Summary Full order report
// @Description Every order joined with buyer, profile, donor and title snapshot
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/orders [get]
func (h *AdminHandler) Orders(c *gin.Context) {
	orders, err := h.reports.AllOrders(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, orders)
}

// ExportOrders godoc
// @Summary Export the order report
// @Description Download the full order report as CSV or PDF
// @Tags Admin
// @Produce octet-stream
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/orders/export [get]
func (h *AdminHandler) ExportOrders(c *gin.Context) {
	result, err := h.reports.ExportOrders(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid id"))
		return 0, false
	}
	return id, true
}

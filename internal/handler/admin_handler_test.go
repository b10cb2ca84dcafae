package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbasket/bookbasket-api/internal/dto"
	"github.com/bookbasket/bookbasket-api/internal/service"
	appErrors "github.com/bookbasket/bookbasket-api/pkg/errors"
)

type approvalServiceMock struct {
	students   []dto.StudentDTO
	donors     []dto.DonorDTO
	approveErr error
	rejectErr  error
	approved   []int64
	rejected   []int64
}

func (m *approvalServiceMock) ListStudents(ctx context.Context) ([]dto.StudentDTO, error) {
	return m.students, nil
}

func (m *approvalServiceMock) ListDonors(ctx context.Context) ([]dto.DonorDTO, error) {
	return m.donors, nil
}

func (m *approvalServiceMock) Approve(ctx context.Context, id int64) error {
	if m.approveErr != nil {
		return m.approveErr
	}
	m.approved = append(m.approved, id)
	return nil
}

func (m *approvalServiceMock) Reject(ctx context.Context, id int64) error {
	if m.rejectErr != nil {
		return m.rejectErr
	}
	m.rejected = append(m.rejected, id)
	return nil
}

type reportServiceMock struct {
	orders    []dto.OrderDetail
	export    *service.ExportResult
	exportErr error
}

func (m *reportServiceMock) AllOrders(ctx context.Context) ([]dto.OrderDetail, error) {
	return m.orders, nil
}

func (m *reportServiceMock) ExportOrders(ctx context.Context, format string) (*service.ExportResult, error) {
	return m.export, m.exportErr
}

func TestAdminHandlerListStudents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAdminHandler(&approvalServiceMock{students: []dto.StudentDTO{}}, &reportServiceMock{})

	c, w := newGinContext(http.MethodGet, "/admin/students", nil)

	handler.ListStudents(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminHandlerApproveStudent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &approvalServiceMock{}
	handler := NewAdminHandler(mockSvc, &reportServiceMock{})

	c, w := newGinContext(http.MethodPut, "/admin/students/5/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	handler.ApproveStudent(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{5}, mockSvc.approved)
}

func TestAdminHandlerApproveStudentBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAdminHandler(&approvalServiceMock{}, &reportServiceMock{})

	c, w := newGinContext(http.MethodPut, "/admin/students/abc/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.ApproveStudent(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandlerRejectStudentNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &approvalServiceMock{rejectErr: appErrors.ErrNotFound}
	handler := NewAdminHandler(mockSvc, &reportServiceMock{})

	c, w := newGinContext(http.MethodPut, "/admin/students/99/reject", nil)
	c.Params = gin.Params{{Key: "id", Value: "99"}}

	handler.RejectStudent(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminHandlerExportOrders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockReports := &reportServiceMock{export: &service.ExportResult{
		Content:     []byte("Order ID,Kind\n31,BOOK\n"),
		ContentType: "text/csv",
		Filename:    "orders-20250301-100000.csv",
	}}
	handler := NewAdminHandler(&approvalServiceMock{}, mockReports)

	c, w := newGinContext(http.MethodGet, "/admin/orders/export?format=csv", nil)

	handler.ExportOrders(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders-20250301-100000.csv")
	assert.Contains(t, w.Body.String(), "31,BOOK")
}

func TestAdminHandlerExportOrdersBadFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockReports := &reportServiceMock{exportErr: appErrors.ErrValidation}
	handler := NewAdminHandler(&approvalServiceMock{}, mockReports)

	c, w := newGinContext(http.MethodGet, "/admin/orders/export?format=xlsx", nil)

	handler.ExportOrders(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

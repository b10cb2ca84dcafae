package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bookbasket/bookbasket-api/internal/models"
	"github.com/bookbasket/bookbasket-api/internal/service"
	appErrors "github.com/bookbasket/bookbasket-api/pkg/errors"
)

type accountServiceMock struct {
	account *models.Account
	err     error
}

func (m *accountServiceMock) Register(ctx context.Context, req service.RegisterRequest) (*models.Account, error) {
	return m.account, m.err
}

type loginServiceMock struct {
	res *models.LoginResponse
	err error
}

func (m *loginServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	return m.res, m.err
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestAuthHandlerRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &accountServiceMock{account: &models.Account{ID: 7, Email: "sara@example.com", Role: models.RoleStudent, Status: models.StatusPending}}
	handler := NewAuthHandler(mockSvc, &loginServiceMock{})

	payload, _ := json.Marshal(service.RegisterRequest{
		Name:       "Sara",
		Email:      "sara@example.com",
		Password:   "secret123",
		Phone:      "0811111111",
		Role:       models.RoleStudent,
		RollNo:     "CS-042",
		College:    "City College",
		University: "State University",
	})
	c, w := newGinContext(http.MethodPost, "/accounts/register", payload)

	handler.Register(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestAuthHandlerRegisterDuplicate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &accountServiceMock{err: appErrors.ErrDuplicateEmail}
	handler := NewAuthHandler(mockSvc, &loginServiceMock{})

	payload, _ := json.Marshal(service.RegisterRequest{Name: "Dina", Email: "dina@example.com", Password: "secret123", Phone: "0800000000", Role: models.RoleDonor})
	c, w := newGinContext(http.MethodPost, "/accounts/register", payload)

	handler.Register(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandlerLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &loginServiceMock{res: &models.LoginResponse{Token: "token", ExpiresIn: 7200}}
	handler := NewAuthHandler(&accountServiceMock{}, mockSvc)

	payload, _ := json.Marshal(models.LoginRequest{Email: "dina@example.com", Password: "secret123"})
	c, w := newGinContext(http.MethodPost, "/accounts/login", payload)

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandlerLoginPending(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &loginServiceMock{err: appErrors.ErrNotApproved}
	handler := NewAuthHandler(&accountServiceMock{}, mockSvc)

	payload, _ := json.Marshal(models.LoginRequest{Email: "sara@example.com", Password: "secret123"})
	c, w := newGinContext(http.MethodPost, "/accounts/login", payload)

	handler.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerLoginMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&accountServiceMock{}, &loginServiceMock{})

	c, w := newGinContext(http.MethodPost, "/accounts/login", []byte("{"))

	handler.Login(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

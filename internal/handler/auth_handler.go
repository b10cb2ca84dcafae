package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookbasket/bookbasket-api/internal/models"
	"github.com/bookbasket/bookbasket-api/internal/service"
	appErrors "github.com/bookbasket/bookbasket-api/pkg/errors"
	"github.com/bookbasket/bookbasket-api/pkg/response"
)

type accountService interface {
	Register(ctx context.Context, req service.RegisterRequest) (*models.Account, error)
}

type loginService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

// AuthHandler wires registration and login endpoints.
type AuthHandler struct {
	accounts accountService
	auth     loginService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(accounts accountService, auth loginService) *AuthHandler {
	return &AuthHandler{accounts: accounts, auth: auth}
}

// Register godoc
// @Summary Register a new account
// @Description Register a student or donor account. Students start pending admin approval; donors are active immediately.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param payload body service.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /accounts/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	account, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, account)
}

// Login godoc
// @Summary Authenticate an account
// @Description Authenticate by email and password. Pending or rejected students cannot log in.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /accounts/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Package handler provides HTTP handlers for API endpoints.
package handler

import (
	"net/http"

	"facebrain/internal/services"
	"facebrain/internal/transport/httpdto"
	facebrain_errors "facebrain/pkg/errors"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles sign-in and registration.
type AuthHandler struct {
	service *services.AuthService
	// exposeErrors surfaces internal failure detail to clients. Development only.
	exposeErrors bool
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(service *services.AuthService, exposeErrors bool) *AuthHandler {
	return &AuthHandler{service: service, exposeErrors: exposeErrors}
}

// SignIn handles POST /signin.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req httpdto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, "incorrect form submission")
		return
	}

	u, err := h.service.SignIn(c.Request.Context(), services.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		recordError(c, err)
		c.JSON(http.StatusBadRequest, clientMessage(err))
		return
	}

	c.JSON(http.StatusOK, httpdto.NewUserDTO(u))
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req httpdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.RegisterErrorResponse{
			Success: false,
			Message: "All fields are required",
			Fields:  map[string]bool{"email": true, "name": true, "password": true},
		})
		return
	}

	u, err := h.service.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		recordError(c, err)
		h.writeRegisterError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.RegisterResponse{
		Success: true,
		User:    httpdto.NewUserDTO(u),
	})
}

func (h *AuthHandler) writeRegisterError(c *gin.Context, err error) {
	res := httpdto.RegisterErrorResponse{Success: false, Message: clientMessage(err)}
	if appErr, ok := asAppError(err); ok {
		res.Fields = appErr.Fields
		res.Field = appErr.Field
	}

	switch facebrain_errors.KindOf(err) {
	case facebrain_errors.KindInvalidRequest,
		facebrain_errors.KindInvalidFormat,
		facebrain_errors.KindWeakPassword,
		facebrain_errors.KindDuplicateEmail:
		c.JSON(http.StatusBadRequest, res)
	default:
		if h.exposeErrors {
			res.Error = facebrain_errors.Detail(err)
		}
		c.JSON(http.StatusInternalServerError, res)
	}
}

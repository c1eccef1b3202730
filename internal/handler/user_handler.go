package handler

import (
	"net/http"

	"facebrain/internal/services"
	"facebrain/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// UserHandler serves user profiles.
type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Profile handles GET /profile/:id.
func (h *UserHandler) Profile(c *gin.Context) {
	id, err := httpdto.ParseUserID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, "Not found")
		return
	}

	u, err := h.service.Profile(c.Request.Context(), id)
	if err != nil {
		recordError(c, err)
		c.JSON(http.StatusBadRequest, clientMessage(err))
		return
	}

	c.JSON(http.StatusOK, httpdto.NewUserDTO(u))
}

package handler

import (
	"net/http"

	"facebrain/internal/services"
	"facebrain/internal/transport/httpdto"
	facebrain_errors "facebrain/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ImageHandler runs face detection on submitted images.
type ImageHandler struct {
	service *services.ImageService
}

func NewImageHandler(service *services.ImageService) *ImageHandler {
	return &ImageHandler{service: service}
}

// Submit handles PUT /image.
func (h *ImageHandler) Submit(c *gin.Context) {
	var req httpdto.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, "incorrect form submission")
		return
	}

	res, err := h.service.Submit(c.Request.Context(), services.SubmitImageInput{
		UserID:   int64(req.ID),
		ImageURL: req.Input,
	})
	if err != nil {
		recordError(c, err)
		c.JSON(imageErrorStatus(err), clientMessage(err))
		return
	}

	c.JSON(http.StatusOK, httpdto.ImageResponse{
		Entries:          res.Entries,
		ClarifaiResponse: res.Response,
	})
}

func imageErrorStatus(err error) int {
	switch facebrain_errors.KindOf(err) {
	case facebrain_errors.KindInvalidRequest:
		return http.StatusBadRequest
	case facebrain_errors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

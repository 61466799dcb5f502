package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetImage godoc
// @Summary  Get cover image content, base64-encoded
// @Tags     Media
// @Produce  json
// @Param    name path string true "image name"
// @Success  200 {string} string
// @Failure  404 {object} errs.ErrorResponse
// @Failure  409 {object} errs.ErrorResponse
// @Router   /api/book/media/image/{name} [get]
func (h *Handler) GetImage(c echo.Context) error {
	data, err := h.mediaSvc.GetImage(c.Request().Context(), c.Param("name"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, data)
}

// DeleteImage godoc
// @Summary  Delete cover image and detach it from the book
// @Tags     Media
// @Produce  json
// @Param    name path string true "image name"
// @Success  200 {object} model.Book
// @Failure  404 {object} errs.ErrorResponse
// @Failure  409 {object} errs.ErrorResponse
// @Failure  500 {object} errs.ErrorResponse
// @Router   /api/book/media/image/{name} [delete]
func (h *Handler) DeleteImage(c echo.Context) error {
	book, err := h.mediaSvc.DeleteImage(c.Request().Context(), c.Param("name"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, book)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookcat/catalog-service/internal/model"
)

// CreateAuthor godoc
// @Summary  Create author
// @Tags     Author
// @Accept   json
// @Produce  json
// @Param    input body model.CreateAuthorRequest true "author"
// @Success  201 {object} model.Author
// @Failure  422 {object} errs.ErrorResponse
// @Failure  400 {object} errs.ErrorResponse
// @Router   /api/author/create [post]
func (h *Handler) CreateAuthor(c echo.Context) error {
	var req model.CreateAuthorRequest
	if err := c.Bind(&req); err != nil {
		return h.errorResponse(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return h.errorResponse(c, err)
	}

	author, err := h.authorSvc.CreateAuthor(c.Request().Context(), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, author)
}

// ListAuthors godoc
// @Summary  List authors with their books
// @Tags     Author
// @Produce  json
// @Param    page  query int false "page"
// @Param    limit query int false "limit"
// @Success  200 {object} model.ListAuthors
// @Router   /api/author/list [get]
func (h *Handler) ListAuthors(c echo.Context) error {
	page, limit, err := paging(c)
	if err != nil {
		return h.errorResponse(c, err)
	}

	list, err := h.authorSvc.ListAuthors(c.Request().Context(), page, limit)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// GetAuthor godoc
// @Summary  Get author by id
// @Tags     Author
// @Produce  json
// @Param    id path int true "author id"
// @Success  200 {object} model.Author
// @Failure  404 {object} errs.ErrorResponse
// @Router   /api/author/{id} [get]
func (h *Handler) GetAuthor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.errorResponse(c, err)
	}

	author, err := h.authorSvc.GetAuthor(c.Request().Context(), id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, author)
}

// DeleteAuthor godoc
// @Summary  Delete author
// @Tags     Author
// @Produce  json
// @Param    id path int true "author id"
// @Success  200 {object} map[string]string
// @Failure  404 {object} errs.ErrorResponse
// @Router   /api/author/delete/{id} [delete]
func (h *Handler) DeleteAuthor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.errorResponse(c, err)
	}

	if err := h.authorSvc.DeleteAuthor(c.Request().Context(), id); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bookcat/catalog-service/internal/errs"
	"github.com/bookcat/catalog-service/internal/model"
)

// CreateBook godoc
// @Summary  Create book
// @Tags     Book
// @Accept   multipart/form-data
// @Produce  json
// @Param    title            formData string true  "title"
// @Param    description      formData string false "description"
// @Param    publication_date formData string false "YYYY-MM-DD"
// @Param    authorIDList     formData string false "JSON array of author ids"
// @Param    image            formData file   false "cover image"
// @Success  201 {object} model.Book
// @Failure  422 {object} errs.ErrorResponse
// @Failure  400 {object} errs.ErrorResponse
// @Router   /api/book/create [post]
func (h *Handler) CreateBook(c echo.Context) error {
	req := model.CreateBookRequest{
		Title:           c.FormValue("title"),
		Description:     c.FormValue("description"),
		PublicationDate: c.FormValue("publication_date"),
	}
	if raw := c.FormValue("authorIDList"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.AuthorIDs); err != nil {
			return h.errorResponse(c, errors.Wrap(errs.ErrBadRequest, "authorIDList is not a JSON array"))
		}
	}
	if err := c.Validate(&req); err != nil {
		return h.errorResponse(c, err)
	}

	var image *model.UploadedImage
	if fh, err := c.FormFile("image"); err == nil {
		src, err := fh.Open()
		if err != nil {
			return h.errorResponse(c, errors.Wrap(errs.ErrBadRequest, err.Error()))
		}
		defer src.Close()
		image = &model.UploadedImage{OriginalName: fh.Filename, Content: src}
	}

	book, err := h.bookSvc.CreateBook(c.Request().Context(), req, image)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, book)
}

// ListBooks godoc
// @Summary  List books with their authors
// @Tags     Book
// @Produce  json
// @Param    page  query int false "page"
// @Param    limit query int false "limit"
// @Success  200 {object} model.ListBooks
// @Router   /api/book/list [get]
func (h *Handler) ListBooks(c echo.Context) error {
	page, limit, err := paging(c)
	if err != nil {
		return h.errorResponse(c, err)
	}

	list, err := h.bookSvc.ListBooks(c.Request().Context(), page, limit)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// SearchBooks godoc
// @Summary  Search books by title or author name
// @Tags     Book
// @Accept   json
// @Produce  json
// @Param    input body model.SearchBooksRequest true "search"
// @Success  200 {array} model.Book
// @Failure  422 {object} errs.ErrorResponse
// @Router   /api/books/search [post]
func (h *Handler) SearchBooks(c echo.Context) error {
	var req model.SearchBooksRequest
	if err := c.Bind(&req); err != nil {
		return h.errorResponse(c, err)
	}

	books, err := h.bookSvc.SearchBooks(c.Request().Context(), req.Search)
	if err != nil {
		return h.errorResponse(c, err)
	}
	if books == nil {
		books = []model.Book{}
	}
	return c.JSON(http.StatusOK, books)
}

// GetBook godoc
// @Summary  Get book by id
// @Tags     Book
// @Produce  json
// @Param    id path int true "book id"
// @Success  200 {object} model.Book
// @Failure  404 {object} errs.ErrorResponse
// @Router   /api/book/{id} [get]
func (h *Handler) GetBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.errorResponse(c, err)
	}

	book, err := h.bookSvc.GetBook(c.Request().Context(), id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, book)
}

// UpdateBook godoc
// @Summary  Update book fields and author links
// @Tags     Book
// @Accept   json
// @Produce  json
// @Param    id    path int                     true "book id"
// @Param    input body model.UpdateBookRequest true "partial update"
// @Success  200 {object} model.Book
// @Failure  404 {object} errs.ErrorResponse
// @Failure  422 {object} errs.ErrorResponse
// @Router   /api/book/{id} [put]
func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.errorResponse(c, err)
	}

	var req model.UpdateBookRequest
	if err := c.Bind(&req); err != nil {
		return h.errorResponse(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return h.errorResponse(c, err)
	}

	book, err := h.bookSvc.UpdateBook(c.Request().Context(), id, req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, book)
}

// DeleteBook godoc
// @Summary  Delete book
// @Tags     Book
// @Produce  json
// @Param    id path int true "book id"
// @Success  200 {object} map[string]string
// @Failure  404 {object} errs.ErrorResponse
// @Router   /api/book/delete/{id} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.errorResponse(c, err)
	}

	if err := h.bookSvc.DeleteBook(c.Request().Context(), id); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

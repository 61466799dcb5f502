package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/bookcat/catalog-service/internal/errs"
	md "github.com/bookcat/catalog-service/pkg/middleware"
	"github.com/bookcat/catalog-service/pkg/validate"
	_ "github.com/bookcat/catalog-service/swagger"
)

type Handler struct {
	authorSvc AuthorService
	bookSvc   BookService
	mediaSvc  MediaService
	log       *zap.Logger
}

func New(authorSvc AuthorService, bookSvc BookService, mediaSvc MediaService, log *zap.Logger) *Handler {
	return &Handler{
		authorSvc: authorSvc,
		bookSvc:   bookSvc,
		mediaSvc:  mediaSvc,
		log:       log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()

	api := e.Group("/api",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.POST("/author/create", h.CreateAuthor)
	api.GET("/author/list", h.ListAuthors)
	api.GET("/author/:id", h.GetAuthor)
	api.DELETE("/author/delete/:id", h.DeleteAuthor)

	api.POST("/book/create", h.CreateBook)
	api.GET("/book/list", h.ListBooks)
	api.POST("/books/search", h.SearchBooks)
	api.GET("/book/media/image/:name", h.GetImage)
	api.DELETE("/book/media/image/:name", h.DeleteImage)
	api.GET("/book/:id", h.GetBook)
	api.PUT("/book/:id", h.UpdateBook)
	api.DELETE("/book/delete/:id", h.DeleteBook)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// errorResponse maps the service error taxonomy onto status codes and
// the {"error": ...} body every endpoint shares.
func (h *Handler) errorResponse(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return c.JSON(he.Code, errs.ErrorResponse{Error: fmt.Sprintf("%v", he.Message)})
	}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrStorage):
		status = http.StatusInternalServerError
	case errors.Is(err, errs.ErrBadRequest):
		status = http.StatusBadRequest
	}
	return c.JSON(status, errs.ErrorResponse{Error: err.Error()})
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errs.ErrBadRequest, "id %q is invalid", c.Param("id"))
	}
	return id, nil
}

// paging pulls page/limit off the query string; missing values come
// back zero and are clamped by the service.
func paging(c echo.Context) (page, limit int, err error) {
	if p := c.QueryParam("page"); p != "" {
		if page, err = strconv.Atoi(p); err != nil {
			return 0, 0, errors.Wrap(errs.ErrBadRequest, "page is invalid")
		}
	}
	if l := c.QueryParam("limit"); l != "" {
		if limit, err = strconv.Atoi(l); err != nil {
			return 0, 0, errors.Wrap(errs.ErrBadRequest, "limit is invalid")
		}
	}
	return page, limit, nil
}

package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookcat/catalog-service/internal/errs"
	"github.com/bookcat/catalog-service/internal/handler"
	service_mocks "github.com/bookcat/catalog-service/internal/handler/mocks"
	"github.com/bookcat/catalog-service/internal/model"
	"github.com/bookcat/catalog-service/pkg/validate"
)

func newTestEcho(t *testing.T) (*echo.Echo, *handler.Handler, *service_mocks.MockAuthorService, *service_mocks.MockBookService, *service_mocks.MockMediaService) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)

	authorSvc := service_mocks.NewMockAuthorService(c)
	bookSvc := service_mocks.NewMockBookService(c)
	mediaSvc := service_mocks.NewMockMediaService(c)
	log := zap.NewExample().Named("test")
	h := handler.New(authorSvc, bookSvc, mediaSvc, log)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	return e, h, authorSvc, bookSvc, mediaSvc
}

func TestHandler_CreateAuthor(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockAuthorService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"first_name":"John","last_name":"Doe"}`,
			mockBehavior: func(r *service_mocks.MockAuthorService) {
				r.EXPECT().
					CreateAuthor(context.Background(), model.CreateAuthorRequest{FirstName: "John", LastName: "Doe"}).
					Return(model.Author{ID: 1, FirstName: "John", LastName: "Doe"}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":1,"first_name":"John","last_name":"Doe","patronymic":""}`,
			},
		},
		{
			name:         "err. last_name required",
			body:         `{"first_name":"John"}`,
			mockBehavior: func(r *service_mocks.MockAuthorService) {},
			response: response{
				expectedCode: http.StatusUnprocessableEntity,
				expectedBody: `LastName`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, authorSvc, _, _ := newTestEcho(t)
			e.POST("/author/create", h.CreateAuthor)
			tt.mockBehavior(authorSvc)

			r := httptest.NewRequest(http.MethodPost, "/author/create", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Contains(t, strings.Trim(w.Body.String(), "\n"), tt.response.expectedBody)
		})
	}
}

func TestHandler_GetAuthor(t *testing.T) {
	t.Parallel()
	var tests = []struct {
		name         string
		id           string
		mockBehavior func(r *service_mocks.MockAuthorService)
		expectedCode int
		expectedBody string
	}{
		{
			name: "ok",
			id:   "7",
			mockBehavior: func(r *service_mocks.MockAuthorService) {
				r.EXPECT().
					GetAuthor(context.Background(), int64(7)).
					Return(model.Author{ID: 7, FirstName: "Лев", LastName: "Толстой", Patronymic: "Николаевич"}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"id":7,"first_name":"Лев","last_name":"Толстой","patronymic":"Николаевич"}`,
		},
		{
			name: "err. not found",
			id:   "42",
			mockBehavior: func(r *service_mocks.MockAuthorService) {
				r.EXPECT().
					GetAuthor(context.Background(), int64(42)).
					Return(model.Author{}, errs.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"not found"}`,
		},
		{
			name:         "err. bad id",
			id:           "abc",
			mockBehavior: func(r *service_mocks.MockAuthorService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"id \"abc\" is invalid: bad request"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, authorSvc, _, _ := newTestEcho(t)
			e.GET("/author/:id", h.GetAuthor)
			tt.mockBehavior(authorSvc)

			r := httptest.NewRequest(http.MethodGet, "/author/"+tt.id, http.NoBody)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_ListBooks(t *testing.T) {
	t.Parallel()
	var tests = []struct {
		name         string
		query        string
		mockBehavior func(r *service_mocks.MockBookService)
		expectedCode int
		expectedBody string
	}{
		{
			name:  "ok",
			query: "?page=2&limit=1",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					ListBooks(context.Background(), 2, 1).
					Return(model.ListBooks{
						Items: []model.Book{
							{
								ID:      2,
								Title:   "Война и мир",
								Authors: []model.Author{{ID: 7, FirstName: "Лев", LastName: "Толстой", Patronymic: "Николаевич"}},
							},
						},
						Paging: model.Paging{Total: 3, Page: 2, Limit: 1},
					}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"items":[{"id":2,"title":"Война и мир","description":"","image_name":"","publication_date":null,"authors":[{"id":7,"first_name":"Лев","last_name":"Толстой","patronymic":"Николаевич"}]}],"total":3,"page":2,"limit":1}`,
		},
		{
			name:         "err. page invalid",
			query:        "?page=x",
			mockBehavior: func(r *service_mocks.MockBookService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"page is invalid: bad request"}`,
		},
		{
			name:  "err. internal",
			query: "",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					ListBooks(context.Background(), 0, 0).
					Return(model.ListBooks{}, errors.New("db internal"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"db internal"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, _, bookSvc, _ := newTestEcho(t)
			e.GET("/book/list", h.ListBooks)
			tt.mockBehavior(bookSvc)

			r := httptest.NewRequest(http.MethodGet, "/book/list"+tt.query, http.NoBody)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_SearchBooks(t *testing.T) {
	t.Parallel()
	var tests = []struct {
		name         string
		body         string
		mockBehavior func(r *service_mocks.MockBookService)
		expectedCode int
		expectedBody string
	}{
		{
			name: "ok",
			body: `{"search":"Толст"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					SearchBooks(context.Background(), "Толст").
					Return([]model.Book{
						{ID: 2, Title: "Война и мир", Authors: []model.Author{}},
					}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `[{"id":2,"title":"Война и мир","description":"","image_name":"","publication_date":null,"authors":[]}]`,
		},
		{
			name: "ok. nothing matches",
			body: `{"search":"zz"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					SearchBooks(context.Background(), "zz").
					Return(nil, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `[]`,
		},
		{
			name: "err. too short",
			body: `{"search":"a"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					SearchBooks(context.Background(), "a").
					Return(nil, errors.Wrap(errs.ErrValidation, "search must be between 2 and 256 characters"))
			},
			expectedCode: http.StatusUnprocessableEntity,
			expectedBody: `{"error":"search must be between 2 and 256 characters: validation failed"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, _, bookSvc, _ := newTestEcho(t)
			e.POST("/books/search", h.SearchBooks)
			tt.mockBehavior(bookSvc)

			r := httptest.NewRequest(http.MethodPost, "/books/search", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_UpdateBook(t *testing.T) {
	t.Parallel()
	var tests = []struct {
		name         string
		id           string
		body         string
		mockBehavior func(r *service_mocks.MockBookService)
		expectedCode int
		expectedBody string
	}{
		{
			name: "ok. replace authors",
			id:   "2",
			body: `{"authorIDList":[3]}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					UpdateBook(context.Background(), int64(2), model.UpdateBookRequest{AuthorIDs: []int64{3}}).
					Return(model.Book{
						ID:      2,
						Title:   "Война и мир",
						Authors: []model.Author{{ID: 3, FirstName: "Антон", LastName: "Чехов", Patronymic: "Павлович"}},
					}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"id":2,"title":"Война и мир","description":"","image_name":"","publication_date":null,"authors":[{"id":3,"first_name":"Антон","last_name":"Чехов","patronymic":"Павлович"}]}`,
		},
		{
			name: "err. not found",
			id:   "99",
			body: `{"title":"xx"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					UpdateBook(context.Background(), int64(99), model.UpdateBookRequest{Title: "xx"}).
					Return(model.Book{}, errs.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"not found"}`,
		},
		{
			name:         "err. short title",
			id:           "2",
			body:         `{"title":"x"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {},
			expectedCode: http.StatusUnprocessableEntity,
			expectedBody: `Title`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, _, bookSvc, _ := newTestEcho(t)
			e.PUT("/book/:id", h.UpdateBook)
			tt.mockBehavior(bookSvc)

			r := httptest.NewRequest(http.MethodPut, "/book/"+tt.id, strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Contains(t, strings.Trim(w.Body.String(), "\n"), tt.expectedBody)
		})
	}
}

func TestHandler_GetImage(t *testing.T) {
	t.Parallel()
	var tests = []struct {
		name         string
		imageName    string
		mockBehavior func(r *service_mocks.MockMediaService)
		expectedCode int
		expectedBody string
	}{
		{
			name:      "ok",
			imageName: "abc.png",
			mockBehavior: func(r *service_mocks.MockMediaService) {
				r.EXPECT().
					GetImage(context.Background(), "abc.png").
					Return("aGVsbG8=", nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `"aGVsbG8="`,
		},
		{
			name:      "err. not found",
			imageName: "nope.png",
			mockBehavior: func(r *service_mocks.MockMediaService) {
				r.EXPECT().
					GetImage(context.Background(), "nope.png").
					Return("", errs.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"not found"}`,
		},
		{
			name:      "err. ambiguous name",
			imageName: "dup.png",
			mockBehavior: func(r *service_mocks.MockMediaService) {
				r.EXPECT().
					GetImage(context.Background(), "dup.png").
					Return("", errs.ErrConflict)
			},
			expectedCode: http.StatusConflict,
			expectedBody: `{"error":"conflict"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, _, _, mediaSvc := newTestEcho(t)
			e.GET("/book/media/image/:name", h.GetImage)
			tt.mockBehavior(mediaSvc)

			r := httptest.NewRequest(http.MethodGet, "/book/media/image/"+tt.imageName, http.NoBody)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_DeleteImage(t *testing.T) {
	t.Parallel()
	var tests = []struct {
		name         string
		imageName    string
		mockBehavior func(r *service_mocks.MockMediaService)
		expectedCode int
		expectedBody string
	}{
		{
			name:      "ok",
			imageName: "abc.png",
			mockBehavior: func(r *service_mocks.MockMediaService) {
				r.EXPECT().
					DeleteImage(context.Background(), "abc.png").
					Return(model.Book{ID: 2, Title: "Война и мир", Authors: []model.Author{}}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"id":2,"title":"Война и мир","description":"","image_name":"","publication_date":null,"authors":[]}`,
		},
		{
			name:      "err. file remove failed",
			imageName: "abc.png",
			mockBehavior: func(r *service_mocks.MockMediaService) {
				r.EXPECT().
					DeleteImage(context.Background(), "abc.png").
					Return(model.Book{}, errors.Wrap(errs.ErrStorage, "permission denied"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"permission denied: storage failure"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, _, _, mediaSvc := newTestEcho(t)
			e.DELETE("/book/media/image/:name", h.DeleteImage)
			tt.mockBehavior(mediaSvc)

			r := httptest.NewRequest(http.MethodDelete, "/book/media/image/"+tt.imageName, http.NoBody)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_DeleteAuthor(t *testing.T) {
	t.Parallel()
	e, h, authorSvc, _, _ := newTestEcho(t)
	e.DELETE("/author/delete/:id", h.DeleteAuthor)

	authorSvc.EXPECT().
		DeleteAuthor(context.Background(), int64(5)).
		Return(nil)

	r := httptest.NewRequest(http.MethodDelete, "/author/delete/5", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `{"status":"deleted"}`, strings.Trim(w.Body.String(), "\n"))
}

package service_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookcat/catalog-service/internal/errs"
	"github.com/bookcat/catalog-service/internal/model"
	repo_mocks "github.com/bookcat/catalog-service/internal/repository/mocks"
	"github.com/bookcat/catalog-service/internal/service"
	service_mocks "github.com/bookcat/catalog-service/internal/service/mocks"
	"github.com/bookcat/catalog-service/pkg/kafka"
)

func newBookService(t *testing.T) (*service.BookService, *repo_mocks.MockBookRepository, *service_mocks.MockFileStore, *service_mocks.MockEnqueuer) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)

	repo := repo_mocks.NewMockBookRepository(c)
	store := service_mocks.NewMockFileStore(c)
	enq := service_mocks.NewMockEnqueuer(c)
	svc := service.NewBookService(repo, store, enq, zap.NewExample().Named("test"))
	return svc, repo, store, enq
}

func TestBookService_ListBooks_ClampsPaging(t *testing.T) {
	t.Parallel()
	var tests = []struct {
		name               string
		page, limit        int
		wantOffset, wantN  int
		wantPage, wantLim  int
	}{
		{name: "defaults", page: 0, limit: 0, wantOffset: 0, wantN: 10, wantPage: 1, wantLim: 10},
		{name: "negative page", page: -3, limit: 5, wantOffset: 0, wantN: 5, wantPage: 1, wantLim: 5},
		{name: "window", page: 3, limit: 7, wantOffset: 14, wantN: 7, wantPage: 3, wantLim: 7},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, repo, _, _ := newBookService(t)

			repo.EXPECT().
				List(gomock.Any(), tt.wantOffset, tt.wantN).
				Return([]model.Book{}, nil)
			repo.EXPECT().
				Count(gomock.Any()).
				Return(42, nil)

			list, err := svc.ListBooks(context.Background(), tt.page, tt.limit)
			require.NoError(t, err)
			require.Equal(t, 42, list.Total)
			require.Equal(t, tt.wantPage, list.Page)
			require.Equal(t, tt.wantLim, list.Limit)
		})
	}
}

func TestBookService_ListBooks_TotalIndependentOfWindow(t *testing.T) {
	t.Parallel()
	svc, repo, _, _ := newBookService(t)

	// page far past the end: empty items, full count
	repo.EXPECT().
		List(gomock.Any(), 990, 10).
		Return([]model.Book{}, nil)
	repo.EXPECT().
		Count(gomock.Any()).
		Return(3, nil)

	list, err := svc.ListBooks(context.Background(), 100, 10)
	require.NoError(t, err)
	require.Empty(t, list.Items)
	require.Equal(t, 3, list.Total)
}

func TestBookService_SearchBooks_Validation(t *testing.T) {
	t.Parallel()
	var tests = []struct {
		name    string
		search  string
		wantErr bool
	}{
		{name: "one char", search: "a", wantErr: true},
		{name: "257 chars", search: strings.Repeat("x", 257), wantErr: true},
		{name: "only spaces around one char", search: "   a   ", wantErr: true},
		{name: "256 chars", search: strings.Repeat("x", 256), wantErr: false},
		{name: "two chars", search: "ab", wantErr: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, repo, _, _ := newBookService(t)

			if !tt.wantErr {
				repo.EXPECT().
					Search(gomock.Any(), strings.TrimSpace(tt.search)).
					Return([]model.Book{}, nil)
			}

			_, err := svc.SearchBooks(context.Background(), tt.search)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrValidation)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestBookService_SearchBooks_TrimsQuery(t *testing.T) {
	t.Parallel()
	svc, repo, _, _ := newBookService(t)

	repo.EXPECT().
		Search(gomock.Any(), "Толстой").
		Return(nil, nil)

	_, err := svc.SearchBooks(context.Background(), "  Толстой  ")
	require.NoError(t, err)
}

func TestBookService_CreateBook(t *testing.T) {
	t.Parallel()

	t.Run("ok. with image and unknown author dropped", func(t *testing.T) {
		t.Parallel()
		svc, repo, store, enq := newBookService(t)

		var storedName string
		store.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(name string, _ io.Reader) error {
				storedName = name
				return nil
			})

		repo.EXPECT().
			Create(gomock.Any(), gomock.Any(), []int64{1, 99}).
			DoAndReturn(func(_ context.Context, book model.Book, _ []int64) (model.Book, error) {
				require.Equal(t, "Каштанка", book.Title)
				require.NotEmpty(t, book.ImageName)
				// id 99 does not exist: the store keeps only id 1
				book.ID = 10
				book.Authors = []model.Author{{ID: 1, FirstName: "Антон", LastName: "Чехов"}}
				return book, nil
			})

		enq.EXPECT().
			Enqueue(kafka.CatalogTopic, model.CatalogEvent{Entity: "book", Action: "created", ID: 10}).
			Return(nil)

		book, err := svc.CreateBook(context.Background(),
			model.CreateBookRequest{Title: "Каштанка", AuthorIDs: []int64{1, 99}},
			&model.UploadedImage{OriginalName: "cover.png", Content: strings.NewReader("img")})
		require.NoError(t, err)
		require.Equal(t, int64(10), book.ID)
		require.Len(t, book.Authors, 1)
		require.Equal(t, int64(1), book.Authors[0].ID)
		require.True(t, strings.HasSuffix(storedName, ".png"), storedName)
		require.Equal(t, storedName, book.ImageName)
	})

	t.Run("err. bad publication date", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _ := newBookService(t)

		_, err := svc.CreateBook(context.Background(),
			model.CreateBookRequest{Title: "Каштанка", PublicationDate: "05-12-1887"}, nil)
		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("err. store failure", func(t *testing.T) {
		t.Parallel()
		svc, _, store, _ := newBookService(t)

		store.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			Return(errors.New("disk full"))

		_, err := svc.CreateBook(context.Background(),
			model.CreateBookRequest{Title: "Каштанка"},
			&model.UploadedImage{OriginalName: "cover.png", Content: strings.NewReader("img")})
		require.ErrorIs(t, err, errs.ErrStorage)
	})
}

func TestBookService_UpdateBook(t *testing.T) {
	t.Parallel()

	t.Run("ok. empty author list leaves associations alone", func(t *testing.T) {
		t.Parallel()
		svc, repo, _, _ := newBookService(t)

		repo.EXPECT().
			Update(gomock.Any(), int64(2), model.BookPatch{Title: "new"}).
			Return(model.Book{ID: 2, Title: "new"}, nil)

		book, err := svc.UpdateBook(context.Background(), 2, model.UpdateBookRequest{Title: "new"})
		require.NoError(t, err)
		require.Equal(t, "new", book.Title)
	})

	t.Run("ok. non-empty list passed through for full replace", func(t *testing.T) {
		t.Parallel()
		svc, repo, _, _ := newBookService(t)

		repo.EXPECT().
			Update(gomock.Any(), int64(2), model.BookPatch{AuthorIDs: []int64{3}}).
			Return(model.Book{ID: 2, Authors: []model.Author{{ID: 3}}}, nil)

		book, err := svc.UpdateBook(context.Background(), 2, model.UpdateBookRequest{AuthorIDs: []int64{3}})
		require.NoError(t, err)
		require.Len(t, book.Authors, 1)
	})

	t.Run("err. bad date never reaches repo", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _ := newBookService(t)

		_, err := svc.UpdateBook(context.Background(), 2, model.UpdateBookRequest{PublicationDate: "soon"})
		require.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestBookService_DeleteBook(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		svc, repo, _, enq := newBookService(t)

		repo.EXPECT().
			Delete(gomock.Any(), int64(2)).
			Return(nil)
		enq.EXPECT().
			Enqueue(kafka.CatalogTopic, model.CatalogEvent{Entity: "book", Action: "deleted", ID: 2}).
			Return(nil)

		require.NoError(t, svc.DeleteBook(context.Background(), 2))
	})

	t.Run("err. not found, no event", func(t *testing.T) {
		t.Parallel()
		svc, repo, _, _ := newBookService(t)

		repo.EXPECT().
			Delete(gomock.Any(), int64(99)).
			Return(errs.ErrNotFound)

		require.ErrorIs(t, svc.DeleteBook(context.Background(), 99), errs.ErrNotFound)
	})
}

package service_test

import (
	"context"
	"encoding/base64"
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

func newMediaService(t *testing.T) (*service.MediaService, *repo_mocks.MockBookRepository, *service_mocks.MockFileStore, *service_mocks.MockEnqueuer) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)

	repo := repo_mocks.NewMockBookRepository(c)
	store := service_mocks.NewMockFileStore(c)
	enq := service_mocks.NewMockEnqueuer(c)
	svc := service.NewMediaService(repo, store, enq, zap.NewExample().Named("test"))
	return svc, repo, store, enq
}

func TestMediaService_GetImage(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		svc, repo, store, _ := newMediaService(t)

		repo.EXPECT().
			GetByImageName(gomock.Any(), "abc.png").
			Return(model.Book{ID: 2, ImageName: "abc.png"}, nil)
		store.EXPECT().Exists("abc.png").Return(true)
		store.EXPECT().Read("abc.png").Return([]byte("hello"), nil)

		data, err := svc.GetImage(context.Background(), "abc.png")
		require.NoError(t, err)
		require.Equal(t, base64.StdEncoding.EncodeToString([]byte("hello")), data)
	})

	t.Run("err. no book references the name", func(t *testing.T) {
		t.Parallel()
		svc, repo, _, _ := newMediaService(t)

		repo.EXPECT().
			GetByImageName(gomock.Any(), "nope.png").
			Return(model.Book{}, errs.ErrNotFound)

		_, err := svc.GetImage(context.Background(), "nope.png")
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("err. book exists but file is gone", func(t *testing.T) {
		t.Parallel()
		svc, repo, store, _ := newMediaService(t)

		repo.EXPECT().
			GetByImageName(gomock.Any(), "lost.png").
			Return(model.Book{ID: 2, ImageName: "lost.png"}, nil)
		store.EXPECT().Exists("lost.png").Return(false)

		_, err := svc.GetImage(context.Background(), "lost.png")
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("err. ambiguous image name", func(t *testing.T) {
		t.Parallel()
		svc, repo, _, _ := newMediaService(t)

		repo.EXPECT().
			GetByImageName(gomock.Any(), "dup.png").
			Return(model.Book{}, errs.ErrConflict)

		_, err := svc.GetImage(context.Background(), "dup.png")
		require.ErrorIs(t, err, errs.ErrConflict)
	})
}

func TestMediaService_DeleteImage(t *testing.T) {
	t.Parallel()

	t.Run("ok. record cleared then file removed", func(t *testing.T) {
		t.Parallel()
		svc, repo, store, enq := newMediaService(t)

		gomock.InOrder(
			repo.EXPECT().
				GetByImageName(gomock.Any(), "abc.png").
				Return(model.Book{ID: 2, ImageName: "abc.png"}, nil),
			repo.EXPECT().
				ClearImageName(gomock.Any(), int64(2)).
				Return(nil),
			store.EXPECT().Exists("abc.png").Return(true),
			store.EXPECT().Remove("abc.png").Return(nil),
		)
		enq.EXPECT().
			Enqueue(kafka.CatalogTopic, model.CatalogEvent{Entity: "image", Action: "deleted", ID: 2}).
			Return(nil)

		book, err := svc.DeleteImage(context.Background(), "abc.png")
		require.NoError(t, err)
		require.Empty(t, book.ImageName)
	})

	t.Run("err. file gone: record is still cleared", func(t *testing.T) {
		t.Parallel()
		svc, repo, store, _ := newMediaService(t)

		gomock.InOrder(
			repo.EXPECT().
				GetByImageName(gomock.Any(), "lost.png").
				Return(model.Book{ID: 2, ImageName: "lost.png"}, nil),
			repo.EXPECT().
				ClearImageName(gomock.Any(), int64(2)).
				Return(nil),
			store.EXPECT().Exists("lost.png").Return(false),
		)

		_, err := svc.DeleteImage(context.Background(), "lost.png")
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("err. remove fails after the record was cleared", func(t *testing.T) {
		t.Parallel()
		svc, repo, store, _ := newMediaService(t)

		gomock.InOrder(
			repo.EXPECT().
				GetByImageName(gomock.Any(), "abc.png").
				Return(model.Book{ID: 2, ImageName: "abc.png"}, nil),
			repo.EXPECT().
				ClearImageName(gomock.Any(), int64(2)).
				Return(nil),
			store.EXPECT().Exists("abc.png").Return(true),
			store.EXPECT().Remove("abc.png").Return(errors.New("permission denied")),
		)

		_, err := svc.DeleteImage(context.Background(), "abc.png")
		require.ErrorIs(t, err, errs.ErrStorage)
	})
}

package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bookcat/catalog-service/internal/model"
	"github.com/bookcat/catalog-service/internal/repository"
)

type AuthorService struct {
	repo repository.AuthorRepository
	enq  Enqueuer
	log  *zap.Logger
}

func NewAuthorService(repo repository.AuthorRepository, enq Enqueuer, log *zap.Logger) *AuthorService {
	return &AuthorService{
		repo: repo,
		enq:  enq,
		log:  log,
	}
}

func (s *AuthorService) CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (model.Author, error) {
	author, err := s.repo.Create(ctx, req)
	if err != nil {
		return model.Author{}, err
	}
	emit(s.enq, s.log, model.CatalogEvent{Entity: "author", Action: "created", ID: author.ID})
	return author, nil
}

// ListAuthors pages through authors in id order; the total always
// reflects the full table, whatever the window.
func (s *AuthorService) ListAuthors(ctx context.Context, page, limit int) (model.ListAuthors, error) {
	page, limit = normalizePaging(page, limit)

	var (
		items []model.AuthorWithBooks
		total int
	)
	gg, gctx := errgroup.WithContext(ctx)
	gg.Go(func() error {
		var err error
		items, err = s.repo.List(gctx, (page-1)*limit, limit)
		return err
	})
	gg.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx)
		return err
	})
	if err := gg.Wait(); err != nil {
		return model.ListAuthors{}, err
	}

	return model.ListAuthors{
		Items: items,
		Paging: model.Paging{
			Total: total,
			Page:  page,
			Limit: limit,
		},
	}, nil
}

func (s *AuthorService) GetAuthor(ctx context.Context, id int64) (model.Author, error) {
	return s.repo.Get(ctx, id)
}

func (s *AuthorService) DeleteAuthor(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	emit(s.enq, s.log, model.CatalogEvent{Entity: "author", Action: "deleted", ID: id})
	return nil
}

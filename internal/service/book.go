package service

import (
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bookcat/catalog-service/internal/errs"
	"github.com/bookcat/catalog-service/internal/model"
	"github.com/bookcat/catalog-service/internal/repository"
)

const (
	searchMinLen = 2
	searchMaxLen = 256
)

type BookService struct {
	repo  repository.BookRepository
	store FileStore
	enq   Enqueuer
	log   *zap.Logger
}

func NewBookService(repo repository.BookRepository, store FileStore, enq Enqueuer, log *zap.Logger) *BookService {
	return &BookService{
		repo:  repo,
		store: store,
		enq:   enq,
		log:   log,
	}
}

// newImageName builds a unique cover name, keeping the extension the
// client uploaded.
func newImageName(original string) string {
	return strings.ReplaceAll(uuid.New().String(), "-", "") + filepath.Ext(original)
}

func parsePublicationDate(s string) (*model.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, errors.Wrapf(errs.ErrValidation, "publication_date %q must be YYYY-MM-DD", s)
	}
	return &d, nil
}

// CreateBook persists the book and links every candidate author id
// that exists; unknown ids are dropped without an error. The cover, if
// any, is written to the file store first under a generated name.
func (s *BookService) CreateBook(ctx context.Context, req model.CreateBookRequest, image *model.UploadedImage) (model.Book, error) {
	pubDate, err := parsePublicationDate(req.PublicationDate)
	if err != nil {
		return model.Book{}, err
	}

	book := model.Book{
		Title:           req.Title,
		Description:     req.Description,
		PublicationDate: pubDate,
	}

	if image != nil {
		name := newImageName(image.OriginalName)
		if err := s.store.Save(name, image.Content); err != nil {
			return model.Book{}, errors.Wrap(errs.ErrStorage, err.Error())
		}
		book.ImageName = name
	}

	created, err := s.repo.Create(ctx, book, req.AuthorIDs)
	if err != nil {
		return model.Book{}, err
	}
	emit(s.enq, s.log, model.CatalogEvent{Entity: "book", Action: "created", ID: created.ID})
	return created, nil
}

func (s *BookService) ListBooks(ctx context.Context, page, limit int) (model.ListBooks, error) {
	page, limit = normalizePaging(page, limit)

	var (
		items []model.Book
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
		return model.ListBooks{}, err
	}

	return model.ListBooks{
		Items: items,
		Paging: model.Paging{
			Total: total,
			Page:  page,
			Limit: limit,
		},
	}, nil
}

// SearchBooks rejects the query before any storage round trip when it
// falls outside 2..256 characters after trimming. Results carry no
// pagination.
func (s *BookService) SearchBooks(ctx context.Context, search string) ([]model.Book, error) {
	search = strings.TrimSpace(search)
	if n := utf8.RuneCountInString(search); n < searchMinLen || n > searchMaxLen {
		return nil, errors.Wrapf(errs.ErrValidation,
			"search must be between %d and %d characters", searchMinLen, searchMaxLen)
	}
	return s.repo.Search(ctx, search)
}

func (s *BookService) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return s.repo.Get(ctx, id)
}

// UpdateBook applies only the supplied fields. A non-empty author id
// list replaces the association set wholesale; an empty one leaves it
// alone.
func (s *BookService) UpdateBook(ctx context.Context, id int64, req model.UpdateBookRequest) (model.Book, error) {
	pubDate, err := parsePublicationDate(req.PublicationDate)
	if err != nil {
		return model.Book{}, err
	}

	return s.repo.Update(ctx, id, model.BookPatch{
		Title:           req.Title,
		Description:     req.Description,
		PublicationDate: pubDate,
		AuthorIDs:       req.AuthorIDs,
	})
}

func (s *BookService) DeleteBook(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	emit(s.enq, s.log, model.CatalogEvent{Entity: "book", Action: "deleted", ID: id})
	return nil
}

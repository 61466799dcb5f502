package service

import (
	"context"
	"encoding/base64"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookcat/catalog-service/internal/errs"
	"github.com/bookcat/catalog-service/internal/model"
	"github.com/bookcat/catalog-service/internal/repository"
)

type MediaService struct {
	repo  repository.BookRepository
	store FileStore
	enq   Enqueuer
	log   *zap.Logger
}

func NewMediaService(repo repository.BookRepository, store FileStore, enq Enqueuer, log *zap.Logger) *MediaService {
	return &MediaService{
		repo:  repo,
		store: store,
		enq:   enq,
		log:   log,
	}
}

// GetImage returns the cover content base64-encoded. A missing book
// reference and a missing file both surface as ErrNotFound; the log
// tells the two apart.
func (s *MediaService) GetImage(ctx context.Context, name string) (string, error) {
	book, err := s.repo.GetByImageName(ctx, name)
	if err != nil {
		return "", err
	}

	if !s.store.Exists(name) {
		s.log.Warn("cover file missing for referenced image",
			zap.String("image_name", name), zap.Int64("book_id", book.ID))
		return "", errors.Wrapf(errs.ErrNotFound, "file %s", name)
	}

	data, err := s.store.Read(name)
	if err != nil {
		return "", errors.Wrap(errs.ErrStorage, err.Error())
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DeleteImage clears the book's image_name and then removes the file.
// The database is updated first; when the file turns out to be missing
// or undeletable the record stays cleared, which is reported as
// ErrNotFound or ErrStorage respectively.
func (s *MediaService) DeleteImage(ctx context.Context, name string) (model.Book, error) {
	book, err := s.repo.GetByImageName(ctx, name)
	if err != nil {
		return model.Book{}, err
	}

	if err := s.repo.ClearImageName(ctx, book.ID); err != nil {
		return model.Book{}, err
	}
	book.ImageName = ""

	if !s.store.Exists(name) {
		s.log.Warn("cover file already gone, record cleared",
			zap.String("image_name", name), zap.Int64("book_id", book.ID))
		return model.Book{}, errors.Wrapf(errs.ErrNotFound, "file %s", name)
	}
	if err := s.store.Remove(name); err != nil {
		s.log.Error("cover file remove failed, record cleared",
			zap.String("image_name", name), zap.Int64("book_id", book.ID), zap.Error(err))
		return model.Book{}, errors.Wrap(errs.ErrStorage, err.Error())
	}

	emit(s.enq, s.log, model.CatalogEvent{Entity: "image", Action: "deleted", ID: book.ID})
	return book, nil
}

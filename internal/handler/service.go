package handler

import (
	"context"

	"github.com/bookcat/catalog-service/internal/model"
	"github.com/bookcat/catalog-service/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type AuthorService interface {
	CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (model.Author, error)
	ListAuthors(ctx context.Context, page, limit int) (model.ListAuthors, error)
	GetAuthor(ctx context.Context, id int64) (model.Author, error)
	DeleteAuthor(ctx context.Context, id int64) error
}

type BookService interface {
	CreateBook(ctx context.Context, req model.CreateBookRequest, image *model.UploadedImage) (model.Book, error)
	ListBooks(ctx context.Context, page, limit int) (model.ListBooks, error)
	SearchBooks(ctx context.Context, search string) ([]model.Book, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	UpdateBook(ctx context.Context, id int64, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
}

type MediaService interface {
	GetImage(ctx context.Context, name string) (string, error)
	DeleteImage(ctx context.Context, name string) (model.Book, error)
}

var (
	_ AuthorService = (*service.AuthorService)(nil)
	_ BookService   = (*service.BookService)(nil)
	_ MediaService  = (*service.MediaService)(nil)
)

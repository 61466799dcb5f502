package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookcat/catalog-service/internal/errs"
	"github.com/bookcat/catalog-service/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=author.go -destination=mocks/author.go

type AuthorRepository interface {
	Create(ctx context.Context, req model.CreateAuthorRequest) (model.Author, error)
	List(ctx context.Context, offset, limit int) ([]model.AuthorWithBooks, error)
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, id int64) (model.Author, error)
	Delete(ctx context.Context, id int64) error
}

type authorRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewAuthorRepository(db *sqlx.DB, log *zap.Logger) (*authorRepository, error) {
	return &authorRepository{
		db:  db,
		log: log.Named("author-repo"),
	}, nil
}

func (r *authorRepository) Create(ctx context.Context, req model.CreateAuthorRequest) (model.Author, error) {
	query, args, err := qb.Insert(authorTableName).
		Columns("first_name", "last_name", "patronymic").
		Values(req.FirstName, req.LastName, req.Patronymic).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Author{}, err
	}

	var author model.Author
	if err := r.db.GetContext(ctx, &author, query, args...); err != nil {
		r.log.Error("Create", zap.String("q", query), zap.Any("args", args))
		return model.Author{}, err
	}
	return author, nil
}

func (r *authorRepository) Get(ctx context.Context, id int64) (model.Author, error) {
	query, args, err := qb.Select("id", "first_name", "last_name", "patronymic").
		From(authorTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Author{}, err
	}

	var author model.Author
	if err := r.db.GetContext(ctx, &author, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Author{}, errs.ErrNotFound
		}
		return model.Author{}, err
	}
	return author, nil
}

// List returns one page of authors in ascending id order, each with
// its book summaries attached.
func (r *authorRepository) List(ctx context.Context, offset, limit int) ([]model.AuthorWithBooks, error) {
	query, args, err := qb.Select("id", "first_name", "last_name", "patronymic").
		From(authorTableName).
		OrderBy("id asc").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, err
	}

	var authors []model.Author
	if err := r.db.SelectContext(ctx, &authors, query, args...); err != nil {
		return nil, err
	}

	items := make([]model.AuthorWithBooks, 0, len(authors))
	ids := make([]int64, 0, len(authors))
	for _, a := range authors {
		items = append(items, model.AuthorWithBooks{Author: a, BookList: []model.BookSummary{}})
		ids = append(ids, a.ID)
	}
	if len(ids) == 0 {
		return items, nil
	}

	books, err := r.booksOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if list, ok := books[items[i].ID]; ok {
			items[i].BookList = list
		}
	}
	return items, nil
}

type authorBookRow struct {
	AuthorID        int64        `db:"author_id"`
	ID              int64        `db:"id"`
	Title           string       `db:"title"`
	Description     string       `db:"description"`
	ImageName       string       `db:"image_name"`
	PublicationDate sql.NullTime `db:"publication_date"`
}

func (r *authorRepository) booksOf(ctx context.Context, authorIDs []int64) (map[int64][]model.BookSummary, error) {
	query, args, err := qb.Select("ba.author_id", "b.id", "b.title", "b.description", "b.image_name", "b.publication_date").
		From(bookTableName + " b").
		Join(fmt.Sprintf("%s ba on ba.book_id = b.id", bookAuthorTableName)).
		Where(sq.Eq{"ba.author_id": authorIDs}).
		OrderBy("ba.author_id asc", "b.id asc").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []authorBookRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	books := make(map[int64][]model.BookSummary, len(authorIDs))
	for _, row := range rows {
		books[row.AuthorID] = append(books[row.AuthorID], model.BookSummary{
			ID:              row.ID,
			Title:           row.Title,
			Description:     row.Description,
			ImageName:       row.ImageName,
			PublicationDate: nullDate(row.PublicationDate),
		})
	}
	return books, nil
}

func (r *authorRepository) Count(ctx context.Context) (int, error) {
	query, args, err := qb.Select("count(*)").From(authorTableName).ToSql()
	if err != nil {
		return 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, err
	}
	return total, nil
}

// Delete removes the author row; join rows to books go with it via
// on delete cascade, the books themselves stay.
func (r *authorRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(authorTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

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

//go:generate go run github.com/golang/mock/mockgen -source=book.go -destination=mocks/book.go

type BookRepository interface {
	Create(ctx context.Context, book model.Book, authorIDs []int64) (model.Book, error)
	List(ctx context.Context, offset, limit int) ([]model.Book, error)
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, query string) ([]model.Book, error)
	Get(ctx context.Context, id int64) (model.Book, error)
	Update(ctx context.Context, id int64, patch model.BookPatch) (model.Book, error)
	Delete(ctx context.Context, id int64) error
	GetByImageName(ctx context.Context, name string) (model.Book, error)
	ClearImageName(ctx context.Context, id int64) error
}

type bookRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewBookRepository(db *sqlx.DB, log *zap.Logger) (*bookRepository, error) {
	return &bookRepository{
		db:  db,
		log: log.Named("book-repo"),
	}, nil
}

// setAuthorsQuery links a book to every candidate author id that
// actually exists; unknown ids fall out of the select, duplicate ids
// hit the PK and are ignored.
const setAuthorsQuery = `
insert into book_author (book_id, author_id)
select $1, id from author where id = any($2)
on conflict do nothing`

func (r *bookRepository) Create(ctx context.Context, book model.Book, authorIDs []int64) (model.Book, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Book{}, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	query, args, err := qb.Insert(bookTableName).
		Columns("title", "description", "image_name", "publication_date").
		Values(book.Title, book.Description, book.ImageName, dateArg(book.PublicationDate)).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var row bookRow
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		r.log.Error("Create", zap.String("q", query), zap.Any("args", args))
		return model.Book{}, err
	}

	if len(authorIDs) > 0 {
		if _, err := tx.ExecContext(ctx, setAuthorsQuery, row.ID, authorIDs); err != nil {
			if isForeignKeyViolation(err) {
				return model.Book{}, errs.ErrConflict
			}
			return model.Book{}, err
		}
	}

	created := row.toModel()
	if err := r.loadAuthors(ctx, tx, []*model.Book{&created}); err != nil {
		return model.Book{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Book{}, errors.Wrap(err, "commit tx")
	}
	return created, nil
}

func (r *bookRepository) Get(ctx context.Context, id int64) (model.Book, error) {
	query, args, err := qb.Select("id", "title", "description", "image_name", "publication_date").
		From(bookTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var row bookRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}

	book := row.toModel()
	if err := r.loadAuthors(ctx, r.db, []*model.Book{&book}); err != nil {
		return model.Book{}, err
	}
	return book, nil
}

// List returns one page of books in ascending id order with nested
// authors.
func (r *bookRepository) List(ctx context.Context, offset, limit int) ([]model.Book, error) {
	query, args, err := qb.Select("id", "title", "description", "image_name", "publication_date").
		From(bookTableName).
		OrderBy("id asc").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []bookRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return r.booksWithAuthors(ctx, rows)
}

func (r *bookRepository) Count(ctx context.Context) (int, error) {
	query, args, err := qb.Select("count(*)").From(bookTableName).ToSql()
	if err != nil {
		return 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, err
	}
	return total, nil
}

// Search matches a case-insensitive substring against the book title
// and the name fields of any linked author. A book qualifies when any
// one field matches, hence the left joins and the distinct.
func (r *bookRepository) Search(ctx context.Context, search string) ([]model.Book, error) {
	pattern := "%" + search + "%"
	query, args, err := qb.Select("b.id", "b.title", "b.description", "b.image_name", "b.publication_date").
		Distinct().
		From(bookTableName + " b").
		LeftJoin(fmt.Sprintf("%s ba on ba.book_id = b.id", bookAuthorTableName)).
		LeftJoin(fmt.Sprintf("%s a on a.id = ba.author_id", authorTableName)).
		Where(sq.Or{
			sq.ILike{"b.title": pattern},
			sq.ILike{"a.first_name": pattern},
			sq.ILike{"a.last_name": pattern},
			sq.ILike{"a.patronymic": pattern},
		}).
		OrderBy("b.id asc").
		ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("Search", zap.String("query", query), zap.Any("args", args))

	var rows []bookRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return r.booksWithAuthors(ctx, rows)
}

func (r *bookRepository) Update(ctx context.Context, id int64, patch model.BookPatch) (model.Book, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Book{}, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	upd := qb.Update(bookTableName).Where(sq.Eq{"id": id}).Suffix("returning *")
	if patch.Title != "" {
		upd = upd.Set("title", patch.Title)
	}
	if patch.Description != "" {
		upd = upd.Set("description", patch.Description)
	}
	if patch.PublicationDate != nil {
		upd = upd.Set("publication_date", dateArg(patch.PublicationDate))
	}
	// squirrel rejects an update without a single set clause
	upd = upd.Set("id", id)

	query, args, err := upd.ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var row bookRow
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		r.log.Error("Update", zap.String("q", query), zap.Any("args", args))
		return model.Book{}, err
	}

	// replace-all reconciliation: an empty candidate list leaves the
	// existing associations untouched
	if len(patch.AuthorIDs) > 0 {
		del, delArgs, err := qb.Delete(bookAuthorTableName).
			Where(sq.Eq{"book_id": id}).
			ToSql()
		if err != nil {
			return model.Book{}, err
		}
		if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
			return model.Book{}, err
		}
		if _, err := tx.ExecContext(ctx, setAuthorsQuery, id, patch.AuthorIDs); err != nil {
			if isForeignKeyViolation(err) {
				return model.Book{}, errs.ErrConflict
			}
			return model.Book{}, err
		}
	}

	updated := row.toModel()
	if err := r.loadAuthors(ctx, tx, []*model.Book{&updated}); err != nil {
		return model.Book{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Book{}, errors.Wrap(err, "commit tx")
	}
	return updated, nil
}

// Delete removes the book row and, via cascade, its join rows. The
// cover file is never touched here.
func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(bookTableName).
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

// GetByImageName resolves a cover name to its owning book. Zero rows
// is ErrNotFound; more than one book claiming the same name is
// ErrConflict, the generator is supposed to keep names unique.
func (r *bookRepository) GetByImageName(ctx context.Context, name string) (model.Book, error) {
	query, args, err := qb.Select("id", "title", "description", "image_name", "publication_date").
		From(bookTableName).
		Where(sq.Eq{"image_name": name}).
		Limit(2).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var rows []bookRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return model.Book{}, err
	}
	switch len(rows) {
	case 0:
		return model.Book{}, errs.ErrNotFound
	case 1:
	default:
		return model.Book{}, errs.ErrConflict
	}

	book := rows[0].toModel()
	if err := r.loadAuthors(ctx, r.db, []*model.Book{&book}); err != nil {
		return model.Book{}, err
	}
	return book, nil
}

func (r *bookRepository) ClearImageName(ctx context.Context, id int64) error {
	query, args, err := qb.Update(bookTableName).
		Set("image_name", "").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *bookRepository) booksWithAuthors(ctx context.Context, rows []bookRow) ([]model.Book, error) {
	books := make([]model.Book, 0, len(rows))
	refs := make([]*model.Book, 0, len(rows))
	for _, row := range rows {
		books = append(books, row.toModel())
	}
	for i := range books {
		refs = append(refs, &books[i])
	}
	if err := r.loadAuthors(ctx, r.db, refs); err != nil {
		return nil, err
	}
	return books, nil
}

type bookAuthorRow struct {
	BookID int64 `db:"book_id"`
	model.Author
}

func (r *bookRepository) loadAuthors(ctx context.Context, q sqlx.QueryerContext, books []*model.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}

	query, args, err := qb.Select("ba.book_id", "a.id", "a.first_name", "a.last_name", "a.patronymic").
		From(authorTableName + " a").
		Join(fmt.Sprintf("%s ba on ba.author_id = a.id", bookAuthorTableName)).
		Where(sq.Eq{"ba.book_id": ids}).
		OrderBy("ba.book_id asc", "a.id asc").
		ToSql()
	if err != nil {
		return err
	}

	var rows []bookAuthorRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return err
	}

	byBook := make(map[int64][]model.Author, len(books))
	for _, row := range rows {
		byBook[row.BookID] = append(byBook[row.BookID], row.Author)
	}
	for _, b := range books {
		if list, ok := byBook[b.ID]; ok {
			b.Authors = list
		}
	}
	return nil
}

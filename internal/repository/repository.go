package repository

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/bookcat/catalog-service/internal/model"
)

const (
	authorTableName     = `author`
	bookTableName       = `book`
	bookAuthorTableName = `book_author`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isForeignKeyViolation(err error) bool {
	return isPgCode(err, pgerrcode.ForeignKeyViolation)
}

// bookRow mirrors the book table; publication_date is nullable.
type bookRow struct {
	ID              int64        `db:"id"`
	Title           string       `db:"title"`
	Description     string       `db:"description"`
	ImageName       string       `db:"image_name"`
	PublicationDate sql.NullTime `db:"publication_date"`
}

func (b bookRow) toModel() model.Book {
	return model.Book{
		ID:              b.ID,
		Title:           b.Title,
		Description:     b.Description,
		ImageName:       b.ImageName,
		PublicationDate: nullDate(b.PublicationDate),
		Authors:         []model.Author{},
	}
}

func nullDate(t sql.NullTime) *model.Date {
	if !t.Valid {
		return nil
	}
	return &model.Date{Time: t.Time}
}

func dateArg(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.Time.Format(time.DateOnly)
}

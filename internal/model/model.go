package model

import (
	"database/sql/driver"
	"io"
	"time"

	"github.com/pkg/errors"
)

// Date is a day-precision timestamp stored as a postgres date and
// serialized as "YYYY-MM-DD".
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, errors.Wrap(err, "parse date")
	}
	return Date{Time: t}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case nil:
		return nil
	default:
		return errors.Errorf("scan date: unsupported type %T", src)
	}
}

type Author struct {
	ID         int64  `json:"id" db:"id"`
	FirstName  string `json:"first_name" db:"first_name"`
	LastName   string `json:"last_name" db:"last_name"`
	Patronymic string `json:"patronymic" db:"patronymic"`
}

type Book struct {
	ID              int64    `json:"id" db:"id"`
	Title           string   `json:"title" db:"title"`
	Description     string   `json:"description" db:"description"`
	ImageName       string   `json:"image_name" db:"image_name"`
	PublicationDate *Date    `json:"publication_date" db:"publication_date"`
	Authors         []Author `json:"authors" db:"-"`
}

// BookSummary is the book shape nested under an author in the author
// list; it carries no author list of its own.
type BookSummary struct {
	ID              int64  `json:"id" db:"id"`
	Title           string `json:"title" db:"title"`
	Description     string `json:"description" db:"description"`
	ImageName       string `json:"image_name" db:"image_name"`
	PublicationDate *Date  `json:"publication_date" db:"publication_date"`
}

type AuthorWithBooks struct {
	Author
	BookList []BookSummary `json:"book_list"`
}

type Paging struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type ListAuthors struct {
	Items  []AuthorWithBooks `json:"items"`
	Paging `json:",inline"`
}

type ListBooks struct {
	Items  []Book `json:"items"`
	Paging `json:",inline"`
}

type CreateAuthorRequest struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Patronymic string `json:"patronymic"`
}

type CreateBookRequest struct {
	Title           string  `json:"title" validate:"required,min=2"`
	Description     string  `json:"description"`
	PublicationDate string  `json:"publication_date" validate:"omitempty,datetime=2006-01-02"`
	AuthorIDs       []int64 `json:"authorIDList"`
}

// UpdateBookRequest carries partial updates: zero-valued fields are
// left unchanged, and an empty AuthorIDs list leaves the existing
// associations untouched.
type UpdateBookRequest struct {
	Title           string  `json:"title" validate:"omitempty,min=2"`
	Description     string  `json:"description"`
	PublicationDate string  `json:"publication_date" validate:"omitempty,datetime=2006-01-02"`
	AuthorIDs       []int64 `json:"authorIDList"`
}

// BookPatch is the normalized update applied by the repository:
// empty strings and nil date mean "keep", a non-empty AuthorIDs list
// means "replace the whole author set".
type BookPatch struct {
	Title           string
	Description     string
	PublicationDate *Date
	AuthorIDs       []int64
}

type SearchBooksRequest struct {
	Search string `json:"search" validate:"required"`
}

// UploadedImage is a cover image taken off a multipart request before
// it is persisted under a generated name.
type UploadedImage struct {
	OriginalName string
	Content      io.Reader
}

type CatalogEvent struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     int64  `json:"id"`
}

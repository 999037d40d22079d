package repository

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write hits a unique index.
	ErrDuplicate = errors.New("duplicate value")
	// ErrConstraint is returned for check and foreign key violations.
	ErrConstraint = errors.New("constraint violated")
)

// ConstraintError describes a write rejected by the database. errors.Is
// matches it against ErrDuplicate or ErrConstraint.
type ConstraintError struct {
	Kind error
	// Name is the index or constraint name when the driver reports one.
	Name string
	// Field is the model field the violation is about, if it can be told.
	Field string
	Err   error
}

func (e *ConstraintError) Error() string {
	if e.Field != "" {
		return e.Kind.Error() + ": " + e.Field
	}
	return e.Kind.Error()
}

func (e *ConstraintError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// constraintFields maps named indexes and checks to the field they guard.
var constraintFields = map[string]string{
	"idx_users_username":        "username",
	"idx_users_email":           "email",
	"chk_users_username_not_me": "username",
	"idx_categories_name":       "name",
	"idx_categories_slug":       "slug",
	"idx_genres_name":           "name",
	"idx_genres_slug":           "slug",
	"idx_reviews_author_title":  "title",
	"chk_reviews_score":         "score",
}

// sqliteColumns maps the column lists SQLite prints to the same fields.
var sqliteColumns = map[string]string{
	"users.username":                     "username",
	"users.email":                        "email",
	"categories.name":                    "name",
	"categories.slug":                    "slug",
	"genres.name":                        "name",
	"genres.slug":                        "slug",
	"reviews.author_id, reviews.title_id": "title",
}

var mysqlKeyRe = regexp.MustCompile(`for key '(?:[^.']+\.)?([^']+)'`)

// translateError maps driver errors to the package's sentinel errors.
// Anything unrecognised is returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return constraintError(ErrDuplicate, pgErr.ConstraintName, err)
		case "23514", "23503":
			return constraintError(ErrConstraint, pgErr.ConstraintName, err)
		}
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			name := ""
			if m := mysqlKeyRe.FindStringSubmatch(myErr.Message); m != nil {
				name = m[1]
			}
			return constraintError(ErrDuplicate, name, err)
		case 3819, 1451, 1452:
			return constraintError(ErrConstraint, mysqlCheckName(myErr.Message), err)
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		msg := liteErr.Error()
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			cols := strings.TrimSpace(strings.TrimPrefix(msg, "UNIQUE constraint failed:"))
			return &ConstraintError{Kind: ErrDuplicate, Name: cols, Field: sqliteColumns[cols], Err: err}
		case sqlite3.ErrConstraintCheck:
			name := strings.TrimSpace(strings.TrimPrefix(msg, "CHECK constraint failed:"))
			return constraintError(ErrConstraint, name, err)
		}
		return constraintError(ErrConstraint, "", err)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return constraintError(ErrDuplicate, "", err)
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return constraintError(ErrConstraint, "", err)
	}
	return err
}

func constraintError(kind error, name string, err error) *ConstraintError {
	return &ConstraintError{Kind: kind, Name: name, Field: constraintFields[name], Err: err}
}

// mysqlCheckName pulls the constraint name out of "Check constraint 'x' is violated."
func mysqlCheckName(msg string) string {
	start := strings.Index(msg, "'")
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], "'")
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound запись не найдена.
var ErrNotFound = errors.New("record not found")

const (
	pgUniqueViolation           = "23505"
	pgInvalidTextRepresentation = "22P02"
)

var duplicateKeyDetail = regexp.MustCompile(`Key \(([^)]+)\)=`)

// DuplicateKeyError нарушение уникального индекса.
type DuplicateKeyError struct {
	Fields     []string
	Constraint string
	Err        error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key on %s", strings.Join(e.Fields, ", "))
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// CastError значение не удалось привести к типу колонки,
// например некорректный идентификатор.
type CastError struct {
	Path  string
	Value string
	Err   error
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cast to %s failed for value %q", e.Path, e.Value)
}

func (e *CastError) Unwrap() error {
	return e.Err
}

// classify переводит ошибки драйвера в ошибки пакета.
// path и value описывают аргумент запроса на случай ошибки приведения типа.
func classify(err error, path, value string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		fields := []string{}
		if m := duplicateKeyDetail.FindStringSubmatch(pgErr.Detail); m != nil {
			for _, f := range strings.Split(m[1], ",") {
				fields = append(fields, strings.TrimSpace(f))
			}
		} else if pgErr.ColumnName != "" {
			fields = append(fields, pgErr.ColumnName)
		}
		return &DuplicateKeyError{Fields: fields, Constraint: pgErr.ConstraintName, Err: err}
	case pgInvalidTextRepresentation:
		return &CastError{Path: path, Value: value, Err: err}
	}
	return err
}

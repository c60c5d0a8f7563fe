// Package dberr classifies driver errors coming back from postgres (pgx) and
// sqlite so repositories can turn them into domain errors.
package dberr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgErrUniqueViolation = "23505"

// UniqueViolation reports whether err is a unique constraint failure and, if
// so, the column it failed on. Index names follow idx_<table>_<column>.
func UniqueViolation(err error) (column string, ok bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgErrUniqueViolation {
			return "", false
		}
		if pgErr.ColumnName != "" {
			return pgErr.ColumnName, true
		}
		name := strings.TrimPrefix(pgErr.ConstraintName, "idx_")
		name = strings.TrimPrefix(name, pgErr.TableName+"_")
		return name, true
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}

	// sqlite: "UNIQUE constraint failed: accounts.email"
	msg := err.Error()
	const marker = "UNIQUE constraint failed: "
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return "", false
	}
	target := msg[idx+len(marker):]
	if comma := strings.Index(target, ","); comma >= 0 {
		target = target[:comma]
	}
	if dot := strings.LastIndex(target, "."); dot >= 0 {
		target = target[dot+1:]
	}
	return strings.TrimSpace(target), true
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

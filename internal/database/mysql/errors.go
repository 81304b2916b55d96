package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/sathwikv/batchq/internal/errs"
)

// MySQL error numbers (read-relevant only)
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errBadFieldError   = 1054
	errParseError      = 1064
	errUnknownTable    = 1146
	errAccessDenied    = 1045
	errConnRefused     = 2003
	errUnknownDatabase = 1049
)

// mapError converts a MySQL driver error into an *errs.Error.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case errAccessDenied, errConnRefused, errUnknownDatabase:
			return errs.Wrap(errs.ErrKindConnectionFailed,
				fmt.Sprintf("%s: %s", msg, mysqlErr.Message), err)
		case errBadFieldError, errParseError, errUnknownTable:
			return errs.Wrap(errs.ErrKindQueryFailed,
				fmt.Sprintf("invalid query: %s", mysqlErr.Message), err)
		default:
			return errs.Wrap(errs.ErrKindQueryFailed,
				fmt.Sprintf("%s: %s", msg, mysqlErr.Message), err)
		}
	}

	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, gomysql.ErrInvalidConn) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

package task

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/example/task-todo-api/domain/apperror"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// run executes fn against the store and translates whatever it returns, or
// panics with, into the application error taxonomy. Every repository
// operation goes through here.
//
// Store calls are detached from caller cancellation: a request whose client
// went away still completes its storage round trip.
func (r *Repository) run(ctx context.Context, op string, fn func(db *gorm.DB) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = r.translate(op, apperror.Unexpected(fmt.Errorf("panic: %v", rec)))
		}
	}()

	if fnErr := fn(r.db.WithContext(context.WithoutCancel(ctx))); fnErr != nil {
		return r.translate(op, fnErr)
	}
	return nil
}

func (r *Repository) translate(op string, err error) *apperror.Error {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		switch classify(err) {
		case apperror.KindNotFound:
			appErr = apperror.NotFound(apperror.MsgTaskNotFound)
		case apperror.KindStorage:
			appErr = apperror.Storage(err)
		default:
			appErr = apperror.Unexpected(err)
		}
	}

	switch appErr.Kind {
	case apperror.KindStorage, apperror.KindUnexpected:
		r.logger.Error("Task store operation failed",
			"operation", op,
			"kind", appErr.Kind,
			"error", appErr.Err,
		)
	}
	return appErr
}

// classify sorts a raw data-layer error into not found, storage or unexpected.
func classify(err error) apperror.Kind {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.KindNotFound
	}
	if isStorageError(err) {
		return apperror.KindStorage
	}
	return apperror.KindUnexpected
}

func isStorageError(err error) bool {
	var (
		sqliteErr  sqlite3.Error
		pgErr      *pgconn.PgError
		connectErr *pgconn.ConnectError
		netErr     net.Error
	)
	switch {
	case errors.As(err, &sqliteErr),
		errors.As(err, &pgErr),
		errors.As(err, &connectErr),
		errors.As(err, &netErr):
		return true
	case errors.Is(err, driver.ErrBadConn),
		errDBClosed != nil && errors.Is(err, errDBClosed),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, sql.ErrTxDone),
		errors.Is(err, gorm.ErrInvalidDB),
		errors.Is(err, gorm.ErrInvalidTransaction),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return true
	}
	return false
}

// errDBClosed is the unexported "sql: database is closed" value database/sql
// returns from every call on a closed pool.
var errDBClosed = closedPoolError()

func closedPoolError() error {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil
	}
	_ = db.Close()
	return db.PingContext(context.Background())
}

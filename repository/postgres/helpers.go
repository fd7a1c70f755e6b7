package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/tasksync/domain"
)

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

// storeErr exposes the SQLSTATE of a Postgres error to the use case layer.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &domain.StoreError{Code: pgErr.Code, Err: err}
	}
	return &domain.StoreError{Err: err}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 1
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

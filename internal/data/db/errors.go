package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsUnavailable reports whether err means the database could not be reached
// or refused work for capacity reasons, as opposed to a bad query.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception, 53: insufficient resources,
		// 57P: operator intervention (admin shutdown, cannot connect now)
		switch {
		case len(pgErr.Code) >= 2 && (pgErr.Code[:2] == "08" || pgErr.Code[:2] == "53"):
			return true
		case len(pgErr.Code) >= 3 && pgErr.Code[:3] == "57P":
			return true
		}
	}
	return pgconn.Timeout(err)
}

package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsUndefinedTable проверяет, является ли ошибка обращением к несуществующей таблице (SQLSTATE 42P01).
//
// Работает с обернутыми ошибками благодаря errors.As.
func IsUndefinedTable(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "42P01"
	}

	return false
}

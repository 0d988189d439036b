package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"smartPricing/domain"
)

const (
	uniqueViolation   = "23505"
	projectPriceIndex   = "idx_bandits_project_price"
)

// wrapErr maps driver errors onto the domain taxonomy. Errors that already
// carry a domain sentinel pass through untouched.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrConcurrencyConflict),
		errors.Is(err, domain.ErrStorage):
		return fmt.Errorf("%s: %w", op, err)
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == projectPriceIndex:
		return fmt.Errorf("%s: %w: price already tested in this project", op, domain.ErrInvalidArgument)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
	}
}

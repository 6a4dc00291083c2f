package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kdanyliuk/studyhall/internal/repository"
)

func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return true
		}
	}

	return false
}

// translateDBErr maps common driver errors to repository-level sentinels.
// Unique violations are split by constraint so registration paths can tell a
// duplicate identifier from a duplicate email, and the allocator can tell a
// lost same-member race from any other conflict.
func translateDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		// unique_violation
		if pge.Code == "23505" {
			switch {
			case pge.ConstraintName == "attendance_open_member":
				return repository.ErrAlreadyCheckedIn
			case strings.HasSuffix(pge.ConstraintName, "_email_key"):
				return repository.ErrDuplicateEmail
			case strings.HasSuffix(pge.ConstraintName, "_pkey"):
				return repository.ErrDuplicateID
			}
			return repository.ErrConflict
		}
	}

	return err
}

// wrapDBErr maps common DB errors to repository-level errors and wraps them with
// the provided operation name.
func wrapDBErr(op string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s:%w", op, translateDBErr(err))
}

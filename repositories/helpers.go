package repositories

import (
	"database/sql"
	"fmt"
)

// userUpdated maps an UPDATE that touched no rows to ErrUserNotFound, so operator settings
// written for a deleted account fail instead of silently succeeding.
func userUpdated(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated user rows: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/erazemk/omara/internal/db"
)

// Duplicate key errors returned when a uniqueness constraint rejects a write.
var (
	ErrDuplicateBagID    = errors.New("duplicate bag id")
	ErrDuplicateBarcode  = errors.New("duplicate barcode value")
	ErrDuplicateClothID  = errors.New("duplicate cloth id")
	ErrDuplicateUsername = errors.New("duplicate username")
)

// ErrClothChanged is returned when a guarded cloth update finds the row was
// moved or given a new image since it was read.
var ErrClothChanged = errors.New("cloth changed concurrently")

// classifyDuplicate maps a unique violation to one of the duplicate errors.
// Other errors are returned wrapped with op.
func classifyDuplicate(op string, err error) error {
	detail, ok := db.UniqueViolation(err)
	if !ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch {
	case strings.Contains(detail, "barcode"):
		return fmt.Errorf("%s: %w", op, ErrDuplicateBarcode)
	case strings.Contains(detail, "bag_id"):
		return fmt.Errorf("%s: %w", op, ErrDuplicateBagID)
	case strings.Contains(detail, "cloth_id"):
		return fmt.Errorf("%s: %w", op, ErrDuplicateClothID)
	case strings.Contains(detail, "username"):
		return fmt.Errorf("%s: %w", op, ErrDuplicateUsername)
	}
	return fmt.Errorf("%s: %w", op, err)
}

package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// Sentinel errors shared by every Store implementation. Handlers match on
// these instead of driver-specific errors.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// translate maps gorm errors onto the repository sentinels. Requires the
// gorm connection to be opened with TranslateError so unique-constraint
// violations surface as gorm.ErrDuplicatedKey.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

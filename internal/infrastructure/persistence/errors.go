package persistence

import (
	"errors"

	"github.com/pharmaops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps well-known gorm errors onto domain errors. The
// connection must be opened with TranslateError so unique violations
// surface as gorm.ErrDuplicatedKey.
func translateError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewNotFoundError(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDomainError(shared.CodeDuplicateKey, resource+" already exists")
	default:
		return err
	}
}

// likePattern wraps a search term for a case-insensitive LIKE
func likePattern(search string) string {
	return "%" + search + "%"
}

package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/carteira-app/carteira/internal/apperrors"
)

// Common validation errors
var (
	ErrInvalidUUID = fmt.Errorf("invalid UUID format")
	ErrEmptySlice  = fmt.Errorf("slice cannot be empty")
)

var ownerPattern = regexp.MustCompile(`^[A-Za-z0-9._@+-]{1,128}$`)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidateUUIDs validates a slice of UUIDs
func ValidateUUIDs(ids []string) error {
	if len(ids) == 0 {
		return ErrEmptySlice
	}
	for _, id := range ids {
		if err := ValidateUUID(id); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOwner checks that an owner identifier is present and uses only
// the characters of a login or e-mail address.
func ValidateOwner(owner string) error {
	if !ownerPattern.MatchString(strings.TrimSpace(owner)) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidOwner, owner)
	}
	return nil
}

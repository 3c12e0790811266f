package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateAssessmentID checks that id is a canonical UUID. Assessment ids
// name storage directories and database keys, so anything else is rejected
// before it reaches a source.
func ValidateAssessmentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidAssessment, "assessment id cannot be empty")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Wrap(ErrCodeInvalidAssessment, err, "invalid assessment id %q", id)
	}
	if parsed.String() != strings.ToLower(id) {
		return New(ErrCodeInvalidAssessment, "assessment id %q must use the hyphenated form", id)
	}
	return nil
}

// ValidateNodeID validates a node id used as a lookup key.
//
// Validation rules:
//   - Id cannot be empty
//   - Maximum length of 256 characters
//   - No control characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	const maxIDLength = 256
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id contains invalid control characters")
		}
	}
	return nil
}

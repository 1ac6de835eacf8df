package models

import "buildsync-backend/pkg/apperr"

func fieldError(field, msg string) error {
	return apperr.Validation("%s %s", field, msg)
}

// RequireFields returns a validation error naming the first empty field.
// Pairs are (name, value).
func RequireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return fieldError(pairs[i], "is required")
		}
	}
	return nil
}

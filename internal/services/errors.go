package services

import (
	"errors"

	"storefront/internal/apperr"
)

// lookupErr turns a repository lookup failure into a typed error: a missing
// record becomes NotFound(msg), anything else is internal.
func lookupErr(err error, msg, internalMsg string) error {
	if errors.Is(err, apperr.ErrNotFound) {
		e := apperr.NotFound("%s", msg)
		e.Err = err
		return e
	}
	return apperr.Internal(err, internalMsg)
}

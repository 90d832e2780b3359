package tui

import (
	"errors"
	"fmt"

	"github.com/pders01/postr/internal/listing"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// firstErr returns the first error worth showing. Superseded loads are
// expected when the user refetches quickly and are skipped.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil && !errors.Is(err, listing.ErrSuperseded) {
			return err
		}
	}
	return nil
}

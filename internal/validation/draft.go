package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pders01/postr/internal/storage"
)

const (
	MaxTitleLength = 200
	MaxBodyLength  = 5000
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrBodyRequired  = errors.New("body is required")
)

// ValidateDraft trims a new post's fields and checks that both are present
// and within length limits. All problems are reported together.
func ValidateDraft(title, body string, userID *int) (storage.Post, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)

	var errs []error
	switch {
	case title == "":
		errs = append(errs, ErrTitleRequired)
	case utf8.RuneCountInString(title) > MaxTitleLength:
		errs = append(errs, fmt.Errorf("title too long (max %d characters)", MaxTitleLength))
	}
	switch {
	case body == "":
		errs = append(errs, ErrBodyRequired)
	case utf8.RuneCountInString(body) > MaxBodyLength:
		errs = append(errs, fmt.Errorf("body too long (max %d characters)", MaxBodyLength))
	}
	if userID != nil && *userID < 1 {
		errs = append(errs, fmt.Errorf("invalid user id %d", *userID))
	}

	if len(errs) > 0 {
		return storage.Post{}, errors.Join(errs...)
	}
	return storage.Post{Title: title, Body: body, UserID: userID}, nil
}

package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/pders01/postr/internal/storage"
)

func TestValidateDraft(t *testing.T) {
	post, err := ValidateDraft("  New  ", "\tB\n", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Title != "New" || post.Body != "B" {
		t.Errorf("fields not trimmed: %+v", post)
	}
	if post.ID != 0 || post.UserID != nil {
		t.Errorf("draft should carry no id or owner: %+v", post)
	}

	owned, err := ValidateDraft("t", "b", storage.IntPtr(3))
	if err != nil || owned.UserID == nil || *owned.UserID != 3 {
		t.Errorf("owner not kept: %+v, %v", owned, err)
	}
}

func TestValidateDraftErrors(t *testing.T) {
	_, err := ValidateDraft(" ", "", nil)
	if !errors.Is(err, ErrTitleRequired) || !errors.Is(err, ErrBodyRequired) {
		t.Errorf("expected both required errors, got %v", err)
	}

	_, err = ValidateDraft("title", "", nil)
	if errors.Is(err, ErrTitleRequired) || !errors.Is(err, ErrBodyRequired) {
		t.Errorf("expected only body error, got %v", err)
	}

	if _, err = ValidateDraft(strings.Repeat("x", MaxTitleLength+1), "b", nil); err == nil {
		t.Error("expected title length error")
	}
	if _, err = ValidateDraft("t", strings.Repeat("y", MaxBodyLength+1), nil); err == nil {
		t.Error("expected body length error")
	}
	if _, err = ValidateDraft("t", "b", storage.IntPtr(0)); err == nil {
		t.Error("expected user id error")
	}
}

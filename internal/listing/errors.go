package listing

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch wraps every failure to load a collection.
	ErrFetch = errors.New("fetch failed")
	// ErrReadOnly is returned by mutations on a collection without a Mutator.
	ErrReadOnly = errors.New("collection is read-only")
	// ErrSuperseded is returned by a load that finished after a newer one
	// had started; its result is discarded.
	ErrSuperseded = errors.New("load superseded by a newer request")
	// ErrDisposed is returned once the manager has been disposed.
	ErrDisposed = errors.New("list manager disposed")
)

// MutationError reports a failed create or delete. Local state is left
// exactly as it was before the attempt.
type MutationError struct {
	Op  string
	Key int
	Err error
}

func (e *MutationError) Error() string {
	if e.Op == OpCreate {
		return fmt.Sprintf("create failed: %v", e.Err)
	}
	return fmt.Sprintf("%s %d failed: %v", e.Op, e.Key, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

const (
	OpCreate = "create"
	OpDelete = "delete"
)

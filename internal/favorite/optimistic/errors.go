package optimistic

import (
	"errors"
	"fmt"
)

// ErrToggleMutationFailed matches every error returned by a failed toggle,
// whatever the cause: transport failure, rejection by the backend, or the
// mutation timeout.
var ErrToggleMutationFailed = errors.New("favorite toggle failed")

// ToggleError describes a toggle whose remote mutation did not succeed. The
// override has already been rolled back when it is returned.
type ToggleError struct {
	ItemID   string
	Intended bool
	Err      error
}

func (e *ToggleError) Error() string {
	op := "remove"
	if e.Intended {
		op = "add"
	}
	return fmt.Sprintf("favorite toggle failed: %s %s: %v", op, e.ItemID, e.Err)
}

func (e *ToggleError) Unwrap() error { return e.Err }

func (e *ToggleError) Is(target error) bool { return target == ErrToggleMutationFailed }

package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a missing trip record or item document. Kind is
// "trip", "flight" or "hotel".
type ErrNotFound struct {
	Kind string
	Key  string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// ErrConflict reports a conditional write rejected because the key already
// holds data. Item writes hit it on every repeated id.
type ErrConflict struct {
	Kind   string
	Key    string
	Reason string
}

func (e ErrConflict) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Kind, e.Key, e.Reason)
}

func NewNotFound(kind, key string) ErrNotFound {
	return ErrNotFound{Kind: kind, Key: key}
}

func NewConflict(kind, key, reason string) ErrConflict {
	return ErrConflict{Kind: kind, Key: key, Reason: reason}
}

// IsNotFound reports whether err wraps an ErrNotFound.
func IsNotFound(err error) bool {
	return errors.As(err, new(ErrNotFound))
}

// IsConflict reports whether err wraps an ErrConflict.
func IsConflict(err error) bool {
	return errors.As(err, new(ErrConflict))
}

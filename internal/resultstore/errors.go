package resultstore

import (
	"errors"
	"fmt"
)

// ErrCorruptStore matches every StoreReadError via errors.Is.
var ErrCorruptStore = errors.New("corrupt store")

// StoreReadError reports an existing store that could not be parsed.
type StoreReadError struct {
	Path string
	Err  error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("read store %s: %v", e.Path, e.Err)
}

func (e *StoreReadError) Unwrap() error { return e.Err }

func (e *StoreReadError) Is(target error) bool { return target == ErrCorruptStore }

// WriteError reports a filesystem failure while creating, appending to or rewriting a store.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write store %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

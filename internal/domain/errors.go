package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// StoreError reports that the relational store could not evaluate an operation.
// It is never produced for "nothing matched".
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store: %s failed", e.Op)
	}
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error {
	return e.Err
}

// Is enables errors.Is matching on StoreError.
func (e StoreError) Is(target error) bool {
	_, ok := target.(StoreError)
	if ok {
		return true
	}
	_, ok = target.(*StoreError)
	return ok
}

// ErrStore is the sentinel error for storage-layer failures.
var ErrStore = StoreError{}

// InvalidOptionError rejects a malformed query option.
type InvalidOptionError struct {
	Option string
	Reason string
}

func (e InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Option, e.Reason)
}

// Is enables errors.Is matching on InvalidOptionError.
func (e InvalidOptionError) Is(target error) bool {
	_, ok := target.(InvalidOptionError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidOptionError)
	return ok
}

// ErrInvalidOption is the sentinel error for rejected options.
var ErrInvalidOption = InvalidOptionError{}

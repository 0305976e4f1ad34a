package report

import "fmt"

// PersistenceError reports a variable dump that could not be written.
type PersistenceError struct {
	Store string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist variable dump to %s: %v", e.Store, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

package analysis

import "fmt"

// Error is returned by Run when the whole analysis cannot proceed. It wraps
// a services sentinel so callers can classify it with errors.Is.
type Error struct {
	Root string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("analysis of %s failed: %s: %v", e.Root, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

package nvcap

import (
	"errors"
	"fmt"
)

var ErrConfigurationInconsistent = errors.New("configuration inconsistent")

// InconsistentError identifies a head selection that the display cannot
// honour. Display is the 0-based index into the display list.
type InconsistentError struct {
	Display int
	Head    int
	Reason  string
}

func (e *InconsistentError) Error() string {
	return fmt.Sprintf("%v: display %d on %s: %s", ErrConfigurationInconsistent, e.Display+1, HeadName(e.Head), e.Reason)
}

func (e *InconsistentError) Unwrap() error {
	return ErrConfigurationInconsistent
}

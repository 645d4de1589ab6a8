package referenceframe

import (
	"errors"
	"fmt"
)

// NewParentFrameMissingError returns an error indicating that a frame is missing a parent.
func NewParentFrameMissingError() error {
	return errors.New("parent frame is nil")
}

// NewFrameMissingError returns an error indicating that the named frame is not in the frame system.
func NewFrameMissingError(name string) error {
	return fmt.Errorf("frame with name %q not in frame system", name)
}

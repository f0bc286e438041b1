package orm

import "github.com/petaldocs/petal/errors"

var _ Model = (*Counter)(nil)

// Copy produces a new copy to fulfill the Model interface.
func (c *Counter) Copy() CloneableData {
	return &Counter{Count: c.Count}
}

// Validate rejects negative counts.
func (c *Counter) Validate() error {
	if c.Count < 0 {
		return errors.Field("Count", errors.ErrModel, "must not be negative")
	}
	return nil
}

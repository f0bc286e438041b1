package sigs

import "github.com/petaldocs/petal/errors"

// ErrInvalidSequence is returned when a signature carries a sequence other
// than the next expected one.
var ErrInvalidSequence = errors.Register(120, "invalid sequence number")

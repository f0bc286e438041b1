package petal

import (
	"encoding/json"
	"time"

	"github.com/petaldocs/petal/errors"
)

// UnixTime represents a point in time as POSIX time with seconds precision.
// Deadlines and block times are compared using this type.
//
// When using in protobuf declaration, use gogoproto's typecasting
//
//   int64 deadline = 1 [(gogoproto.casttype) = "github.com/petaldocs/petal.UnixTime"];
//
type UnixTime int64

// Time returns a time.Time structure that represents the same moment in time.
func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0)
}

// Add modifies this UNIX time by given duration. This is compatible with
// time.Time.Add method.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

// AsUnixTime converts given Time structure into its UNIX time representation.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

// UnmarshalJSON supports unmarshaling both as time.Time and from a number.
// A number is the canonical representation but a RFC 3339 string is handy
// in the genesis file.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var unix int64
	if err := json.Unmarshal(raw, &unix); err == nil {
		return t.set(UnixTime(unix))
	}

	var stdtime time.Time
	if err := json.Unmarshal(raw, &stdtime); err == nil {
		return t.set(AsUnixTime(stdtime))
	}

	return errors.Wrap(errors.ErrInput, "invalid time format")
}

func (t *UnixTime) set(v UnixTime) error {
	if v < 0 {
		return errors.Wrap(errors.ErrInput, "time before epoch")
	}
	*t = v
	return nil
}

// Validate returns an error if this time value is invalid.
func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrState, "negative value")
	}
	return nil
}

// String returns the usual string representation of this time as the time.Time
// structure would.
func (t UnixTime) String() string {
	return t.Time().UTC().String()
}

package petal

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/petaldocs/petal/errors"
)

// conditionFormat matches "<extension>/<type>/<data>". The (?s) flag lets
// binary data contain newlines.
var conditionFormat = regexp.MustCompile(`(?s)^([a-zA-Z0-9_\-]{3,8})/([a-zA-Z0-9_\-]{3,8})/(.+)$`)

// Condition describes who can authorize an action, for example a public
// key signature. It is the byte string
//
//   <extension>/<type>/<data>
//
// Its Address is what document registries store as signers and owners.
type Condition []byte

// NewCondition joins the sections of a condition.
func NewCondition(ext, typ string, data []byte) Condition {
	c := make(Condition, 0, len(ext)+len(typ)+2+len(data))
	c = append(c, ext...)
	c = append(c, '/')
	c = append(c, typ...)
	c = append(c, '/')
	return append(c, data...)
}

// Parse splits the condition into extension, type and data.
func (c Condition) Parse() (ext, typ string, data []byte, err error) {
	m := conditionFormat.FindSubmatch(c)
	if m == nil {
		return "", "", nil, errors.Wrapf(errors.ErrInput, "condition: %X", []byte(c))
	}
	return string(m[1]), string(m[2]), m[3], nil
}

// Address returns the digest identifying this condition.
func (c Condition) Address() Address {
	return NewAddress(c)
}

// Equals compares two conditions byte by byte.
func (c Condition) Equals(other Condition) bool {
	return bytes.Equal(c, other)
}

// String renders the data section as upper case hex.
func (c Condition) String() string {
	ext, typ, data, err := c.Parse()
	if err != nil {
		return fmt.Sprintf("Invalid Condition: %X", []byte(c))
	}
	return fmt.Sprintf("%s/%s/%X", ext, typ, data)
}

// Validate fails if the condition is not well formed.
func (c Condition) Validate() error {
	if !conditionFormat.Match(c) {
		return errors.Wrapf(errors.ErrInput, "condition: %X", []byte(c))
	}
	return nil
}

// MarshalJSON uses the String form. A nil condition is an empty string.
func (c Condition) MarshalJSON() ([]byte, error) {
	if c == nil {
		return json.Marshal("")
	}
	return json.Marshal(c.String())
}

// UnmarshalJSON reads the String form.
func (c *Condition) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	return c.parseString(s)
}

func (c *Condition) parseString(s string) error {
	if s == "" {
		*c = nil
		return nil
	}
	sections := strings.Split(s, "/")
	if len(sections) != 3 {
		return errors.Wrap(errors.ErrInput, "invalid condition format")
	}
	data, err := hex.DecodeString(sections[2])
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "malformed condition data: %s", err)
	}
	*c = NewCondition(sections[0], sections[1], data)
	return nil
}

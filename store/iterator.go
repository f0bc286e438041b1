package store

import (
	"bytes"

	"github.com/petaldocs/petal/errors"
)

// mergeIterator joins a snapshot of cached changes with the iterator of the
// underlying store. Cached values take precedence and cached deletes hide
// the underlying entries.
type mergeIterator struct {
	cached  []item
	parent  Iterator
	reverse bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(cached []item, parent Iterator, reverse bool) (*mergeIterator, error) {
	it := &mergeIterator{
		cached:  cached,
		parent:  parent,
		reverse: reverse,
	}
	if err := it.skipDeleted(); err != nil {
		parent.Close()
		return nil, err
	}
	return it, nil
}

type source uint8

const (
	none source = iota
	ours
	theirs
	both
)

// current tells which of the two sources holds the next key.
func (m *mergeIterator) current() source {
	hasOurs := len(m.cached) > 0
	hasTheirs := m.parent.Valid()
	switch {
	case !hasOurs && !hasTheirs:
		return none
	case !hasTheirs:
		return ours
	case !hasOurs:
		return theirs
	}

	cmp := bytes.Compare(m.cached[0].key, m.parent.Key())
	if m.reverse {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return ours
	case cmp > 0:
		return theirs
	default:
		return both
	}
}

// Valid returns true if Key and Value can be read.
func (m *mergeIterator) Valid() bool {
	return m.current() != none
}

// Next moves to the next key that is not deleted.
func (m *mergeIterator) Next() error {
	if err := m.advance(m.current()); err != nil {
		return err
	}
	return m.skipDeleted()
}

func (m *mergeIterator) advance(src source) error {
	switch src {
	case ours:
		m.cached = m.cached[1:]
	case theirs:
		return m.parent.Next()
	case both:
		m.cached = m.cached[1:]
		return m.parent.Next()
	default:
		return errors.Wrap(errors.ErrState, "iterator passed the end")
	}
	return nil
}

// skipDeleted moves past all cached deletes that are at the cursor.
func (m *mergeIterator) skipDeleted() error {
	for {
		src := m.current()
		if src != ours && src != both {
			return nil
		}
		if !m.cached[0].deleted {
			return nil
		}
		if err := m.advance(src); err != nil {
			return err
		}
	}
}

// Key returns the key of the cursor. Panics when not valid.
func (m *mergeIterator) Key() []byte {
	switch m.current() {
	case ours, both:
		return m.cached[0].key
	case theirs:
		return m.parent.Key()
	default:
		panic("iterator passed the end")
	}
}

// Value returns the value of the cursor. Panics when not valid.
func (m *mergeIterator) Value() []byte {
	switch m.current() {
	case ours, both:
		return m.cached[0].value
	case theirs:
		return m.parent.Value()
	default:
		panic("iterator passed the end")
	}
}

// Close releases the underlying iterator.
func (m *mergeIterator) Close() {
	m.parent.Close()
	m.cached = nil
}

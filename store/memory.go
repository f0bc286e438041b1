package store

import (
	"github.com/petaldocs/petal/errors"
)

// SliceIterator iterates over a prepared slice of models.
type SliceIterator struct {
	data []Model
	idx  int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator creates a new Iterator over this slice.
func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{data: data}
}

// Valid returns true iff Key and Value can be read.
func (s *SliceIterator) Valid() bool {
	return s.idx < len(s.data)
}

// Next moves the cursor forward. It fails once the end is reached.
func (s *SliceIterator) Next() error {
	if !s.Valid() {
		return errors.Wrap(errors.ErrState, "iterator passed the end")
	}
	s.idx++
	return nil
}

// Key returns the key of the cursor. Panics when not valid.
func (s *SliceIterator) Key() []byte {
	s.mustBeValid()
	return s.data[s.idx].Key
}

// Value returns the value of the cursor. Panics when not valid.
func (s *SliceIterator) Value() []byte {
	s.mustBeValid()
	return s.data[s.idx].Value
}

func (s *SliceIterator) mustBeValid() {
	if !s.Valid() {
		panic("iterator passed the end")
	}
}

// Close releases the Iterator.
func (s *SliceIterator) Close() {
	s.data = nil
}

// EmptyKVStore never holds any data. It is the base layer of in memory
// stores.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

// Get always returns nil.
func (EmptyKVStore) Get(key []byte) ([]byte, error) { return nil, nil }

// Has always returns false.
func (EmptyKVStore) Has(key []byte) (bool, error) { return false, nil }

// Set is a noop.
func (EmptyKVStore) Set(key, value []byte) error { return nil }

// Delete is a noop.
func (EmptyKVStore) Delete(key []byte) error { return nil }

// Iterator is always empty.
func (EmptyKVStore) Iterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

// ReverseIterator is always empty.
func (EmptyKVStore) ReverseIterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

// NewBatch returns a batch that writes nowhere.
func (e EmptyKVStore) NewBatch() Batch {
	return NewNonAtomicBatch(e)
}

type opKind uint8

const (
	setKind opKind = iota + 1
	delKind
)

// Op is a single set or delete operation.
type Op struct {
	kind  opKind
	key   []byte
	value []byte
}

// SetOp creates a set operation.
func SetOp(key, value []byte) Op {
	return Op{kind: setKind, key: key, value: value}
}

// DelOp creates a delete operation.
func DelOp(key []byte) Op {
	return Op{kind: delKind, key: key}
}

// Apply executes the operation on given store.
func (o Op) Apply(out SetDeleter) error {
	switch o.kind {
	case setKind:
		return out.Set(o.key, o.value)
	case delKind:
		return out.Delete(o.key)
	default:
		return errors.Wrapf(errors.ErrHuman, "unknown operation kind %d", o.kind)
	}
}

// IsSet returns true for set operations.
func (o Op) IsSet() bool {
	return o.kind == setKind
}

// Key returns the key the operation is modifying.
func (o Op) Key() []byte {
	return o.key
}

// Value returns the value written by a set operation.
func (o Op) Value() []byte {
	return o.value
}

// NonAtomicBatch collects operations and executes them one by one on
// Write. Use it only when the output is an in memory store.
type NonAtomicBatch struct {
	out SetDeleter
	ops []Op
}

var _ Batch = (*NonAtomicBatch)(nil)

// NewNonAtomicBatch creates an empty batch writing to given output.
func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

// Set queues a set operation.
func (b *NonAtomicBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, SetOp(key, value))
	return nil
}

// Delete queues a delete operation.
func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, DelOp(key))
	return nil
}

// Write applies all queued operations and resets the batch.
func (b *NonAtomicBatch) Write() error {
	ops := b.ops
	b.ops = nil
	for _, op := range ops {
		if err := op.Apply(b.out); err != nil {
			return err
		}
	}
	return nil
}

// ShowOps returns all operations that are queued but not written yet.
func (b *NonAtomicBatch) ShowOps() []Op {
	return b.ops
}

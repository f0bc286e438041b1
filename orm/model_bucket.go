package orm

import (
	"reflect"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
)

// ModelBucket stores Models under a primary key.
type ModelBucket interface {
	// One loads the model stored under given key into dest. It returns
	// ErrNotFound if nothing is stored under the key and ErrType if
	// dest cannot hold the stored entity.
	One(db petal.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns ErrNotFound if nothing is stored under given key.
	Has(db petal.ReadOnlyKVStore, key []byte) error

	// Put validates and saves given model.
	Put(db petal.KVStore, key []byte, m Model) error

	// Delete removes the model stored under given key. It returns
	// ErrNotFound if nothing is stored under the key.
	Delete(db petal.KVStore, key []byte) error

	// Visit calls fn with every stored model in ascending key order.
	Visit(db petal.ReadOnlyKVStore, fn func(key []byte, m Model) error) error

	// Register exposes the bucket to queries.
	Register(name string, r petal.QueryRouter)
}

// NewModelBucket returns a ModelBucket storing models of the same type as
// proto.
func NewModelBucket(name string, proto Model) ModelBucket {
	return &modelBucket{
		b: NewBucket(name, NewSimpleObj(nil, proto)),
	}
}

type modelBucket struct {
	b Bucket
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) One(db petal.ReadOnlyKVStore, key []byte, dest Model) error {
	obj, err := mb.b.Get(db, key)
	if err != nil {
		return err
	}
	if obj == nil || obj.Value() == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	return load(obj.Value(), dest)
}

func load(src, dest Model) error {
	if !reflect.TypeOf(src).AssignableTo(reflect.TypeOf(dest)) {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %T", src, dest)
	}
	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(src).Elem())
	return nil
}

func (mb *modelBucket) Has(db petal.ReadOnlyKVStore, key []byte) error {
	ok, err := mb.b.Has(db, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "no %q entity", mb.b.Name())
	}
	return nil
}

func (mb *modelBucket) Put(db petal.KVStore, key []byte, m Model) error {
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	if err := mb.b.Save(db, NewSimpleObj(key, m)); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db petal.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	return mb.b.Delete(db, key)
}

func (mb *modelBucket) Visit(db petal.ReadOnlyKVStore, fn func(key []byte, m Model) error) error {
	return mb.b.Visit(db, func(obj Object) error {
		return fn(obj.Key(), obj.Value())
	})
}

func (mb *modelBucket) Register(name string, r petal.QueryRouter) {
	mb.b.Register(name, r)
}

/*
Package orm provides a thin typed layer over the key value store.

The state space is split into prefixed sections called buckets. Each bucket
holds a single type of entity, stored under a primary key, and can be
exposed to ABCI queries under its own path.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Bucket is a prefixed subspace of the database. All stored values are of
// the proto type.
type Bucket struct {
	name   string
	prefix []byte
	proto  Cloneable
}

var _ petal.QueryHandler = Bucket{}

// NewBucket creates a bucket to store data. The name must be 3 to 10
// characters of [a-z_], otherwise this function panics.
func NewBucket(name string, proto Cloneable) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket name: %q", name))
	}
	return Bucket{
		name:   name,
		prefix: []byte(name + ":"),
		proto:  proto,
	}
}

// Name returns the name of the bucket.
func (b Bucket) Name() string {
	return b.name
}

// Register exposes this bucket to queries under "/" + name. When name is
// empty the bucket name is used.
func (b Bucket) Register(name string, r petal.QueryRouter) {
	if name == "" {
		name = b.name
	}
	r.Register("/"+name, b)
}

// Query returns a single entity for the key query mod and all entities
// whose key starts with data for the prefix query mod.
func (b Bucket) Query(db petal.ReadOnlyKVStore, mod string, data []byte) ([]petal.Model, error) {
	switch mod {
	case petal.KeyQueryMod:
		key := b.DBKey(data)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, nil
		}
		return []petal.Model{petal.Pair(key, value)}, nil
	case petal.PrefixQueryMod:
		return queryPrefix(db, b.DBKey(data))
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}

// DBKey is the full key stored in the database, including the prefix. The
// result is always a new slice.
func (b Bucket) DBKey(key []byte) []byte {
	out := make([]byte, len(b.prefix)+len(key))
	n := copy(out, b.prefix)
	copy(out[n:], key)
	return out
}

// Get returns the object stored under given key or nil if missing.
func (b Bucket) Get(db petal.ReadOnlyKVStore, key []byte) (Object, error) {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return b.Parse(key, raw)
}

// Has returns true if an object is stored under given key.
func (b Bucket) Has(db petal.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Parse reconstructs an object from its key (without the prefix) and its
// serialized value.
func (b Bucket) Parse(key, value []byte) (Object, error) {
	obj := b.proto.Clone()
	if err := obj.Value().Unmarshal(value); err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "cannot unmarshal %q entity: %s", b.name, err)
	}
	obj.SetKey(key)
	return obj, nil
}

// Save validates and writes given object.
func (b Bucket) Save(db petal.KVStore, obj Object) error {
	if err := obj.Validate(); err != nil {
		return err
	}
	raw, err := obj.Value().Marshal()
	if err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot marshal %q entity: %s", b.name, err)
	}
	return db.Set(b.DBKey(obj.Key()), raw)
}

// Delete removes the value stored under given key.
func (b Bucket) Delete(db petal.KVStore, key []byte) error {
	return db.Delete(b.DBKey(key))
}

// Visit calls fn for every object of this bucket, in ascending key order.
// Iteration stops on the first error returned by fn.
func (b Bucket) Visit(db petal.ReadOnlyKVStore, fn func(Object) error) error {
	start, end := prefixRange(b.prefix)
	it, err := db.Iterator(start, end)
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Valid() {
		key := append([]byte(nil), it.Key()[len(b.prefix):]...)
		obj, err := b.Parse(key, it.Value())
		if err != nil {
			return err
		}
		if err := fn(obj); err != nil {
			return err
		}
		if err := it.Next(); err != nil {
			return err
		}
	}
	return nil
}

package orm

import (
	"github.com/petaldocs/petal"
)

// Validater checks whether a value is in a valid state to be saved.
type Validater interface {
	Validate() error
}

// Object is what is stored in the bucket. Key is joined with the bucket
// prefix to build the database key and Value is the data stored.
type Object interface {
	Keyed
	Cloneable
	Validater
	Value() CloneableData
}

// Reader allows reading objects from the database.
type Reader interface {
	Get(db petal.ReadOnlyKVStore, key []byte) (Object, error)
}

// Keyed is anything that can identify itself.
type Keyed interface {
	Key() []byte
	SetKey([]byte)
}

// Cloneable creates a new, empty object that data can be loaded into.
type Cloneable interface {
	Clone() Object
}

// CloneableData is a value that can be embedded in an object.
type CloneableData interface {
	Validater
	petal.Persistent
	Copy() CloneableData
}

// Model is implemented by any entity that can be stored using ModelBucket.
// It is the same as CloneableData.
type Model = CloneableData

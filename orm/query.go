package orm

import (
	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
)

// ConsumeIterator reads all remaining data and closes the iterator.
func ConsumeIterator(it petal.Iterator) ([]petal.Model, error) {
	defer it.Close()

	var res []petal.Model
	for it.Valid() {
		res = append(res, petal.Pair(it.Key(), it.Value()))
		if err := it.Next(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func queryPrefix(db petal.ReadOnlyKVStore, prefix []byte) ([]petal.Model, error) {
	start, end := prefixRange(prefix)
	it, err := db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return ConsumeIterator(it)
}

// prefixRange returns the [start, end) range of all keys having given
// prefix. A nil end means there is no upper bound.
func prefixRange(prefix []byte) ([]byte, []byte) {
	if prefix == nil {
		return nil, nil
	}
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 255 {
			end[i]++
			return prefix, end
		}
		end[i] = 0
	}
	// Every byte rolled over, the range is open.
	return prefix, nil
}

// RegisterQuery exposes the whole store under "/". It is used by clients
// that know the full database key of an entity.
func RegisterQuery(qr petal.QueryRouter) {
	qr.Register("/", RawQueryHandler{})
}

// RawQueryHandler queries the store without any bucket prefix.
type RawQueryHandler struct{}

var _ petal.QueryHandler = RawQueryHandler{}

// Query returns the value stored under data for the key query mod and all
// entries prefixed with data for the prefix query mod.
func (RawQueryHandler) Query(db petal.ReadOnlyKVStore, mod string, data []byte) ([]petal.Model, error) {
	switch mod {
	case petal.KeyQueryMod:
		value, err := db.Get(data)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, nil
		}
		return []petal.Model{petal.Pair(data, value)}, nil
	case petal.PrefixQueryMod:
		return queryPrefix(db, data)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}

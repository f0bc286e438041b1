package utils

import (
	"context"
	"fmt"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/store"
	"github.com/tendermint/tendermint/libs/common"
)

// KeyTagger records all Set and Delete operations performed down the stack
// and tags the delivered transaction with every modified key.
//
// The tag key is the upper case hex representation of the database key and
// the value is "s" for writes and "d" for deletions.
type KeyTagger struct{}

var _ petal.Decorator = KeyTagger{}

// NewKeyTagger creates a KeyTagger decorator
func NewKeyTagger() KeyTagger {
	return KeyTagger{}
}

// Check does not tag.
func (KeyTagger) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Checker) (*petal.CheckResult, error) {
	return next.Check(ctx, info, db, tx)
}

func (KeyTagger) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Deliverer) (*petal.DeliverResult, error) {
	record := store.NewRecordingStore(db)
	res, err := next.Deliver(ctx, info, record, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, changesToTags(record.KVPairs())...)
	return res, nil
}

var (
	recordSet    = []byte("s")
	recordDelete = []byte("d")
)

func changesToTags(changes map[string][]byte) common.KVPairs {
	if len(changes) == 0 {
		return nil
	}
	tags := make(common.KVPairs, 0, len(changes))
	for k, v := range changes {
		value := recordSet
		if v == nil {
			value = recordDelete
		}
		tags = append(tags, common.KVPair{
			Key:   []byte(fmt.Sprintf("%X", k)),
			Value: value,
		})
	}
	tags.Sort()
	return tags
}

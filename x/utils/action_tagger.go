package utils

import (
	"context"

	"github.com/petaldocs/petal"
	"github.com/tendermint/tendermint/libs/common"
)

// ActionKey is the tag key under which ActionTagger stores the message path.
const ActionKey = "action"

// ActionTagger tags every successfully delivered transaction with
// `action = <message path>`, so that clients can search and subscribe to
// for example all issued documents.
type ActionTagger struct{}

var _ petal.Decorator = ActionTagger{}

// NewActionTagger creates a ActionTagger decorator
func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

// Check does not tag.
func (ActionTagger) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Checker) (*petal.CheckResult, error) {
	return next.Check(ctx, info, db, tx)
}

func (ActionTagger) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Deliverer) (*petal.DeliverResult, error) {
	// A broken transaction fails before any handler runs.
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, info, db, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, common.KVPair{
		Key:   []byte(ActionKey),
		Value: []byte(msg.Path()),
	})
	return res, nil
}

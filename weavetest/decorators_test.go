package weavetest

import (
	"context"
	"testing"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
)

func TestDecoratorPassesThrough(t *testing.T) {
	var (
		d Decorator
		h Handler
	)
	ctx := context.Background()

	if _, err := d.Check(ctx, petal.BlockInfo{}, nil, nil, &h); err != nil {
		t.Fatalf("check: %s", err)
	}
	if _, err := d.Deliver(ctx, petal.BlockInfo{}, nil, nil, &h); err != nil {
		t.Fatalf("deliver: %s", err)
	}
	if h.CheckCallCount() != 1 || h.DeliverCallCount() != 1 {
		t.Fatalf("handler not reached: %d checks, %d delivers", h.CheckCallCount(), h.DeliverCallCount())
	}
}

func TestDecoratorShortCircuits(t *testing.T) {
	d := Decorator{
		CheckErr:   errors.ErrExpired,
		DeliverErr: errors.ErrState,
	}
	ctx := context.Background()

	// A nil handler panics if reached.
	if _, err := d.Check(ctx, petal.BlockInfo{}, nil, nil, nil); !errors.ErrExpired.Is(err) {
		t.Fatalf("want expired error, got %v", err)
	}
	if _, err := d.Deliver(ctx, petal.BlockInfo{}, nil, nil, nil); !errors.ErrState.Is(err) {
		t.Fatalf("want state error, got %v", err)
	}
}

func TestDecoratorCounters(t *testing.T) {
	var d Decorator
	ctx := context.Background()

	steps := []struct {
		fail        bool
		deliver     bool
		wantCheck   int
		wantDeliver int
	}{
		{fail: false, deliver: false, wantCheck: 1, wantDeliver: 0},
		{fail: false, deliver: true, wantCheck: 1, wantDeliver: 1},
		{fail: true, deliver: true, wantCheck: 1, wantDeliver: 2},
		{fail: true, deliver: false, wantCheck: 2, wantDeliver: 2},
	}
	for i, s := range steps {
		d.CheckErr, d.DeliverErr = nil, nil
		if s.fail {
			d.CheckErr, d.DeliverErr = errors.ErrInput, errors.ErrInput
		}
		if s.deliver {
			_, _ = d.Deliver(ctx, petal.BlockInfo{}, nil, nil, &Handler{})
		} else {
			_, _ = d.Check(ctx, petal.BlockInfo{}, nil, nil, &Handler{})
		}

		if got := d.CheckCallCount(); got != s.wantCheck {
			t.Errorf("step %d: want %d checks, got %d", i, s.wantCheck, got)
		}
		if got := d.DeliverCallCount(); got != s.wantDeliver {
			t.Errorf("step %d: want %d delivers, got %d", i, s.wantDeliver, got)
		}
		if got := d.CallCount(); got != s.wantCheck+s.wantDeliver {
			t.Errorf("step %d: want %d calls, got %d", i, s.wantCheck+s.wantDeliver, got)
		}
	}
}

func TestDecorateOrder(t *testing.T) {
	d := &Decorator{CheckErr: errors.ErrUnauthorized}
	h := &Handler{}
	wrapped := Decorate(h, d)

	if _, err := wrapped.Check(context.Background(), petal.BlockInfo{}, nil, nil); !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want unauthorized, got %v", err)
	}
	if _, err := wrapped.Deliver(context.Background(), petal.BlockInfo{}, nil, nil); err != nil {
		t.Fatalf("deliver: %s", err)
	}
	if d.CallCount() != 2 || h.CheckCallCount() != 0 || h.DeliverCallCount() != 1 {
		t.Fatalf("unexpected calls: decorator %d, handler %d/%d", d.CallCount(), h.CheckCallCount(), h.DeliverCallCount())
	}
}

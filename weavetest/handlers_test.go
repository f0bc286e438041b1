package weavetest

import (
	"reflect"
	"testing"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/store"
)

func TestHandlerWithError(t *testing.T) {
	h := Handler{
		CheckErr:   errors.ErrUnauthorized,
		DeliverErr: errors.ErrNotFound,
	}

	_, err := h.Check(nil, petal.BlockInfo{}, nil, nil)
	if want := errors.ErrUnauthorized; !want.Is(err) {
		t.Errorf("want %q, got %q", want, err)
	}

	_, err = h.Deliver(nil, petal.BlockInfo{}, nil, nil)
	if want := errors.ErrNotFound; !want.Is(err) {
		t.Errorf("want %q, got %q", want, err)
	}
}

func TestHandlerCallCount(t *testing.T) {
	var h Handler

	assertHCounts(t, &h, 0, 0)

	h.Check(nil, petal.BlockInfo{}, nil, nil)
	assertHCounts(t, &h, 1, 0)

	h.Check(nil, petal.BlockInfo{}, nil, nil)
	assertHCounts(t, &h, 2, 0)

	h.Deliver(nil, petal.BlockInfo{}, nil, nil)
	assertHCounts(t, &h, 2, 1)

	h.Deliver(nil, petal.BlockInfo{}, nil, nil)
	assertHCounts(t, &h, 2, 2)

	// Failing counter must increment as well.
	h.CheckErr = errors.ErrNotFound
	h.DeliverErr = errors.ErrNotFound

	h.Check(nil, petal.BlockInfo{}, nil, nil)
	assertHCounts(t, &h, 3, 2)

	h.Deliver(nil, petal.BlockInfo{}, nil, nil)
	assertHCounts(t, &h, 3, 3)
}

func assertHCounts(t *testing.T, h *Handler, wantCheck, wantDeliver int) {
	t.Helper()
	if got := h.CheckCallCount(); got != wantCheck {
		t.Errorf("want %d checks, got %d", wantCheck, got)
	}
	if got := h.DeliverCallCount(); got != wantDeliver {
		t.Errorf("want %d delivers, got %d", wantDeliver, got)
	}
	wantTotal := wantCheck + wantDeliver
	if got := h.CallCount(); got != wantTotal {
		t.Errorf("want %d total, got %d", wantTotal, got)
	}
}

func TestHandlerResult(t *testing.T) {
	wantCres := petal.CheckResult{
		Data:         []byte("foo"),
		GasAllocated: 5,
	}
	wantDres := petal.DeliverResult{
		Data:    []byte("bar"),
		GasUsed: 824,
	}
	h := Handler{
		CheckResult:   wantCres,
		DeliverResult: wantDres,
	}

	gotCres, _ := h.Check(nil, petal.BlockInfo{}, nil, nil)
	if !reflect.DeepEqual(&wantCres, gotCres) {
		t.Fatalf("got check result: %+v", gotCres)
	}
	gotDres, _ := h.Deliver(nil, petal.BlockInfo{}, nil, nil)
	if !reflect.DeepEqual(&wantDres, gotDres) {
		t.Fatalf("got deliver result: %+v", gotDres)
	}
}

func TestWriteHandler(t *testing.T) {
	db := store.MemStore()
	h := WriteHandler{Key: []byte("k"), Value: []byte("v"), Err: errors.ErrState}

	if _, err := h.Deliver(nil, petal.BlockInfo{}, db, nil); !errors.ErrState.Is(err) {
		t.Fatalf("want state error, got %+v", err)
	}
	if v, err := db.Get([]byte("k")); err != nil || string(v) != "v" {
		t.Fatalf("value not written: %q, %v", v, err)
	}
}

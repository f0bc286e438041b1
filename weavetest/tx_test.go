package weavetest

import (
	"testing"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
)

func TestLoadMsgFromTx(t *testing.T) {
	msg := &Msg{RoutePath: "test/msg", Serialized: []byte("content")}
	tx := &Tx{Msg: msg}

	var loaded Msg
	if err := petal.LoadMsg(tx, &loaded); err != nil {
		t.Fatalf("cannot load message: %s", err)
	}
	if loaded.RoutePath != "test/msg" || string(loaded.Serialized) != "content" {
		t.Fatalf("unexpected message loaded: %+v", loaded)
	}
	if got := petal.GetPath(tx); got != "test/msg" {
		t.Fatalf("unexpected path: %q", got)
	}
}

func TestLoadInvalidMsg(t *testing.T) {
	tx := &Tx{Msg: &Msg{Err: errors.ErrMsg}}
	var loaded Msg
	if err := petal.LoadMsg(tx, &loaded); !errors.ErrMsg.Is(err) {
		t.Fatalf("want message error, got %+v", err)
	}

	tx = &Tx{Err: errors.ErrInput}
	if err := petal.LoadMsg(tx, &loaded); !errors.ErrInput.Is(err) {
		t.Fatalf("want input error, got %+v", err)
	}
	if got := petal.GetPath(tx); got != "(missing)" {
		t.Fatalf("unexpected path: %q", got)
	}
}

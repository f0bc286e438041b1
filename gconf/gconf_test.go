package gconf

import (
	"encoding/json"
	"testing"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/store"
	"github.com/petaldocs/petal/weavetest"
	"github.com/petaldocs/petal/weavetest/assert"
)

func TestSaveLoad(t *testing.T) {
	owner := weavetest.RandomAddr(t)

	cases := map[string]struct {
		Conf        *myconfig
		WantSaveErr *errors.Error
	}{
		"valid configuration": {
			Conf: &myconfig{Owner: owner, Num: 42, Str: "foo"},
		},
		"invalid owner cannot be saved": {
			Conf:        &myconfig{Owner: petal.Address("too short"), Num: 1},
			WantSaveErr: errors.ErrInput,
		},
		"negative number cannot be saved": {
			Conf:        &myconfig{Owner: owner, Num: -1},
			WantSaveErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if err := Save(db, "mypkg", tc.Conf); !tc.WantSaveErr.Is(err) {
				t.Fatalf("unexpected save error: %+v", err)
			}
			if tc.WantSaveErr != nil {
				return
			}
			var got myconfig
			assert.Nil(t, Load(db, "mypkg", &got))
			assert.Equal(t, tc.Conf, &got)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	db := store.MemStore()
	var got myconfig
	if err := Load(db, "mypkg", &got); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found error, got %+v", err)
	}

	assert.Nil(t, db.Set(Key("mypkg"), []byte("not json")))
	if err := Load(db, "mypkg", &got); !errors.ErrModel.Is(err) {
		t.Fatalf("want model error, got %+v", err)
	}
}

func TestInitConfig(t *testing.T) {
	owner := weavetest.RandomAddr(t)
	raw, err := json.Marshal(map[string]interface{}{
		"conf": map[string]interface{}{
			"mypkg":   map[string]interface{}{"Owner": owner, "Num": 7, "Str": "bar"},
			"invalid": map[string]interface{}{"Owner": owner, "Num": -7},
		},
	})
	assert.Nil(t, err)
	var opts petal.Options
	assert.Nil(t, json.Unmarshal(raw, &opts))

	db := store.MemStore()
	var conf myconfig
	assert.Nil(t, InitConfig(db, opts, "mypkg", &conf))

	var got myconfig
	assert.Nil(t, Load(db, "mypkg", &got))
	assert.Equal(t, myconfig{Owner: owner, Num: 7, Str: "bar"}, got)

	if err := InitConfig(db, opts, "otherpkg", &conf); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found error, got %+v", err)
	}
	if err := InitConfig(db, opts, "invalid", &conf); !errors.ErrInput.Is(err) {
		t.Fatalf("want input error, got %+v", err)
	}
}

type myconfig struct {
	Owner petal.Address
	Num   int64
	Str   string
}

func (c *myconfig) GetOwner() petal.Address    { return c.Owner }
func (c *myconfig) Marshal() ([]byte, error)   { return json.Marshal(c) }
func (c *myconfig) Unmarshal(raw []byte) error { return json.Unmarshal(raw, c) }

func (c *myconfig) Validate() error {
	if err := c.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if c.Num < 0 {
		return errors.Wrap(errors.ErrInput, "negative number")
	}
	return nil
}

type myconfigMsg struct {
	Patch *myconfig
}

var _ petal.Msg = (*myconfigMsg)(nil)

func (msg *myconfigMsg) Marshal() ([]byte, error)   { return json.Marshal(msg) }
func (msg *myconfigMsg) Unmarshal(raw []byte) error { return json.Unmarshal(raw, msg) }
func (msg *myconfigMsg) Path() string               { return "myconfig" }
func (msg *myconfigMsg) Validate() error            { return nil }

package commands

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/gogo/protobuf/proto"
	"github.com/petaldocs/petal/errors"
)

// Example is written out twice, as <Filename>.json and <Filename>.bin.
// Filename must not contain a directory or an extension.
type Example struct {
	Filename string
	Obj      proto.Message
}

// TestGenCmd writes the JSON and protobuf encoding of every example into
// the directory given as the first argument, "testdata" by default. Client
// libraries check their codecs against these files.
func TestGenCmd(examples []Example, args []string) error {
	outdir := "testdata"
	if len(args) > 0 {
		outdir = args[0]
	}
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot create %s: %s", outdir, err)
	}

	for _, ex := range examples {
		if err := writeExample(outdir, ex); err != nil {
			return errors.Wrap(err, ex.Filename)
		}
	}
	return nil
}

func writeExample(outdir string, ex Example) error {
	js, err := json.Marshal(ex.Obj)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "json: %s", err)
	}
	if err := ioutil.WriteFile(filepath.Join(outdir, ex.Filename+".json"), js, 0644); err != nil {
		return errors.Wrapf(errors.ErrInput, "write json: %s", err)
	}

	pb, err := proto.Marshal(ex.Obj)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "protobuf: %s", err)
	}
	if err := ioutil.WriteFile(filepath.Join(outdir, ex.Filename+".bin"), pb, 0644); err != nil {
		return errors.Wrapf(errors.ErrInput, "write protobuf: %s", err)
	}
	return nil
}

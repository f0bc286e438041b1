package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/cmd/petald/app"
	"github.com/petaldocs/petal/commands"
	"github.com/petaldocs/petal/commands/server"
	"github.com/petaldocs/petal/x/docsign"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	flagHome     = "home"
	flagLogLevel = "log_level"
	varHome      *string
	varLogLevel  *string
)

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".petal")
	varHome = flag.String(flagHome, defaultHome, "directory to store files under")
	varLogLevel = flag.String(flagLogLevel, "info", "minimum level of logged messages: debug, info, error or none")

	flag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("petal")
	fmt.Println("          Document attestation node")
	fmt.Println("")
	fmt.Println("help      Print this message")
	fmt.Println("init      Initialize app options in genesis file")
	fmt.Println("start     Run the abci server")
	fmt.Println("getblock  Extract a block from blockchain.db")
	fmt.Println("retry     Run last block again to ensure it produces same result")
	fmt.Println("validate  Check the application state of genesis files")
	fmt.Println("testgen   Write test data files")
	fmt.Println("version   Print the app version")
	fmt.Println(`
  -home string
        directory to store files under (default "$HOME/.petal")
  -log_level string
        minimum level of logged messages: debug, info, error or none (default "info")`)
}

func main() {
	flag.Parse()

	logger, err := newLogger(*varLogLevel)
	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}

	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = server.InitCmd(app.GenInitOptions, logger, *varHome, rest)
	case "start":
		err = server.StartCmd(app.GenerateApp, logger, *varHome, rest)
	case "getblock":
		err = server.GetBlockCmd(logger, *varHome, rest)
	case "retry":
		err = server.RetryCmd(app.InlineApp, logger, *varHome, rest)
	case "validate":
		err = server.ValidateGenesis(&docsign.Initializer{}, rest)
	case "testgen":
		err = commands.TestGenCmd(app.Examples(), rest)
	case "version":
		fmt.Println(petal.Version())
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}

func newLogger(level string) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).
		With("module", "petal")
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, opt), nil
}

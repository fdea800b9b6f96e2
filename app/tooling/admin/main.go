// This program performs administrative tasks against a node's chain snapshot.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/puffin/app/tooling/admin/commands"
	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/blockchain/genesis"
	"github.com/ardanlabs/puffin/foundation/blockchain/storage"
	"github.com/ardanlabs/puffin/foundation/blockchain/storage/bolt"
	"github.com/ardanlabs/puffin/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/puffin/foundation/logger"
	"github.com/ardanlabs/puffin/foundation/nameservice"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args     conf.Args
		Snapshot struct {
			Store string `conf:"default:disk"`
			Path  string `conf:"default:zblock/chain.json"`
		}
		GenesisPath string `conf:"default:zblock/genesis.json"`
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "PuffinCoin snapshot admin: bals [wallet] | trans <wallet> | verify",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	gen, err := genesis.Load(cfg.GenesisPath)
	if err != nil {
		return fmt.Errorf("loading genesis: %w", err)
	}

	var strg storage.Storer
	switch cfg.Snapshot.Store {
	case "disk":
		strg, err = disk.New(cfg.Snapshot.Path)
	case "bolt":
		strg, err = bolt.New(cfg.Snapshot.Path)
	default:
		return fmt.Errorf("unknown snapshot store %q", cfg.Snapshot.Store)
	}
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer strg.Close()

	cd, err := strg.Read()
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	if len(cd.Chain) == 0 {
		return database.ErrEmptyChain
	}

	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		log.Infow("startup", "status", "nameservice unavailable", "ERROR", err)
	}

	return processCommands(cfg.Args, cd.Chain, gen, ns)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, chain []database.Block, gen genesis.Genesis, ns *nameservice.NameService) error {
	switch args.Num(0) {
	case "bals":
		if err := commands.Balances(args, chain, ns); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	case "trans":
		if err := commands.Transactions(args, chain, ns); err != nil {
			return fmt.Errorf("getting transactions: %w", err)
		}
	case "verify":
		if err := commands.Verify(chain, gen); err != nil {
			return fmt.Errorf("verifying chain: %w", err)
		}
	default:
		return fmt.Errorf("unknown command %q, use bals, trans or verify", args.Num(0))
	}

	return nil
}

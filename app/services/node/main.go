package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/puffin/app/services/node/handlers"
	"github.com/ardanlabs/puffin/foundation/blockchain/genesis"
	"github.com/ardanlabs/puffin/foundation/blockchain/state"
	"github.com/ardanlabs/puffin/foundation/blockchain/storage"
	"github.com/ardanlabs/puffin/foundation/blockchain/storage/bolt"
	"github.com/ardanlabs/puffin/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/puffin/foundation/blockchain/wallet"
	"github.com/ardanlabs/puffin/foundation/blockchain/worker"
	"github.com/ardanlabs/puffin/foundation/events"
	"github.com/ardanlabs/puffin/foundation/logger"
	"github.com/ardanlabs/puffin/foundation/nameservice"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
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

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			PrivateHost     string        `conf:"default:0.0.0.0:9080"`
		}
		State struct {
			PublicAddress string        `conf:"default:localhost:9080"`
			KnownPeers    []string
			GenesisPath   string        `conf:"default:zblock/genesis.json"`
			WalletPath    string        `conf:"default:zblock/wallet.json"`
			SyncInterval  time.Duration `conf:"default:1s"`
			HaltDelay     time.Duration `conf:"default:5s"`
			MineOnStart   bool          `conf:"default:false"`
		}
		Snapshot struct {
			Store    string        `conf:"default:disk"`
			Path     string        `conf:"default:zblock/chain.json"`
			Interval time.Duration `conf:"default:30s"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "PuffinCoin ledger node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	fmt.Println(`  ____         __  __ _        ____      _       `)
	fmt.Println(` |  _ \ _   _ / _|/ _(_)_ __  / ___|___ (_)_ __  `)
	fmt.Println(` | |_) | | | | |_| |_| | '_ \| |   / _ \| | '_ \ `)
	fmt.Println(` |  __/| |_| |  _|  _| | | | | |__| (_) | | | | |`)
	fmt.Println(` |_|    \__,_|_| |_| |_|_| |_|\____\___/|_|_| |_|`)
	fmt.Print("\n")

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for account addresses.
	// The names come from the wallet file names in the accounts folder.
	if err := os.MkdirAll(cfg.NameService.Folder, 0700); err != nil {
		return fmt.Errorf("unable to create name service folder: %w", err)
	}

	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	// Logging the accounts for documentation in the logs.
	for account, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "account", account)
	}

	// =========================================================================
	// Blockchain Support

	// The consensus parameters every node on the network must share.
	gen, err := genesis.Load(cfg.State.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis: %w", err)
	}
	log.Infow("startup", "status", "genesis", "version", gen.Version, "difficulty", gen.Difficulty,
		"reward", gen.MiningReward, "blocksize", gen.BlockSize)

	// The node wallet receives the mining rewards and signs the transactions
	// sent through the operator api.
	wal, created, err := wallet.LoadOrGenerate(cfg.State.WalletPath)
	if err != nil {
		return fmt.Errorf("unable to load wallet: %w", err)
	}
	log.Infow("startup", "status", "wallet", "account", wal.Account(), "created", created)

	strg, err := openStorage(cfg.Snapshot.Store, cfg.Snapshot.Path)
	if err != nil {
		return fmt.Errorf("unable to open snapshot storage: %w", err)
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. The messages marked for viewers are also sent to any
	// websocket client that is connected into the system through the events
	// package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.SendViewer(s)
	}

	// The state value represents the blockchain node and manages the blockchain
	// database and provides an API for application support.
	st, err := state.New(state.Config{
		Host:      cfg.State.PublicAddress,
		Genesis:   gen,
		Storage:   strg,
		EvHandler: ev,
	})
	if err != nil {
		if strg != nil {
			strg.Close()
		}
		return err
	}
	defer st.Shutdown()

	// Join the network through the known peers. A version mismatch with the
	// first peer contacted means this node can't take part in the network.
	if _, err := st.AddPeers(cfg.State.KnownPeers); err != nil {
		if errors.Is(err, state.ErrVersionBehind) || errors.Is(err, state.ErrVersionAhead) {
			log.Errorw("startup", "status", "version mismatch, halting", "ERROR", err, "delay", cfg.State.HaltDelay)
			time.Sleep(cfg.State.HaltDelay)
		}
		return fmt.Errorf("joining network: %w", err)
	}

	if len(st.RetrieveKnownHosts()) == 0 {
		log.Infow("startup", "status", "no peers admitted, running in degraded mode")
	}

	// The worker package implements the different workflows such as mining,
	// syncing with peers, and snapshots. The worker will register itself
	// with the state.
	worker.Run(st, ev, worker.Config{
		SyncInterval:     cfg.State.SyncInterval,
		SnapshotInterval: cfg.Snapshot.Interval,
	})

	if cfg.State.MineOnStart {
		st.Worker.SignalStartMining(wal.Account())
	}

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.
	debugMux := handlers.DebugMux(build, log, st)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		NS:       ns,
		Evts:     evts,
		Wallet:   wal,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Start Private Service

	log.Infow("startup", "status", "initializing peer protocol support")

	// Construct the mux for the peer protocol calls.
	privateMux := handlers.PrivateMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
	})

	// Construct a server to service the requests against the mux.
	private := http.Server{
		Addr:         cfg.Web.PrivateHost,
		Handler:      privateMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for peer requests.
	go func() {
		log.Infow("startup", "status", "private api router started", "host", private.Addr)
		serverErrors <- private.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancelPri := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPri()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown private API started")
		if err := private.Shutdown(ctx); err != nil {
			private.Close()
			return fmt.Errorf("could not stop private service gracefully: %w", err)
		}

		// Give outstanding requests a deadline for completion.
		ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPub()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// openStorage constructs the configured snapshot store. A nil store means
// snapshots are disabled.
func openStorage(kind string, path string) (storage.Storer, error) {
	switch kind {
	case "disk":
		return disk.New(path)
	case "bolt":
		return bolt.New(path)
	case "none":
		return nil, nil
	}

	return nil, fmt.Errorf("unknown snapshot store %q", kind)
}

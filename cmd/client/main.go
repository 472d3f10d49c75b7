package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	apperrors "nfinite/errors"
	"nfinite/infrastructure/storage"
	"nfinite/infrastructure/transport"
	"nfinite/runtime"
	"nfinite/runtime/workers"
	"nfinite/services"
	"nfinite/sink"
	"nfinite/ui"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const usage = `usage: nfinite-client <command> [args]

commands:
  serve              stay connected and hold fragments for other peers
  list               print the files stored on the hub
  upload PATH...     upload local files
  download NAME...   download files into NFINITE_DOWNLOAD_DIR
`

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run(args []string) (int, error) {
	flags := flag.NewFlagSet("nfinite-client", flag.ContinueOnError)
	flags.Usage = func() { fmt.Fprint(flags.Output(), usage) }
	if err := flags.Parse(args); err != nil {
		return exitConfig, err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return exitConfig, fmt.Errorf("missing command")
	}
	command, operands := flags.Arg(0), flags.Args()[1:]
	switch command {
	case "serve", "list":
	case "upload", "download":
		if len(operands) == 0 {
			return exitConfig, fmt.Errorf("%s needs at least one argument", command)
		}
	default:
		flags.Usage()
		return exitConfig, fmt.Errorf("unknown command %q", command)
	}

	// 1. Configuration & Logger
	_ = godotenv.Load()
	config, err := LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	terminal := ui.NewTerminal(os.Stdout, config.Colours, command != "serve")

	files, err := sink.NewDiskSink(config.DownloadDir, log)
	if err != nil {
		return exitConfig, err
	}

	// 2. Fragment store
	store, closeStore, err := openFragmentStore(config.FragmentDir, log)
	if err != nil {
		return exitRuntime, err
	}
	defer closeStore()

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Connection & receive loop
	conn, err := transport.Dial(ctx, config.HubURL, transport.DefaultOptions(), log, terminal)
	if err != nil {
		return exitRuntime, err
	}
	peer := services.NewPeerService(log, conn, store, terminal, files, runtime.Credentials{
		Name: config.Username,
		Pass: config.Password,
	})
	sup := workers.NewSupervisor(log, workers.DefaultRestartInterval).Add(peer)
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()
	defer func() {
		_ = peer.Close()
		<-supDone
	}()

	if err := peer.Register(); err != nil {
		return exitRuntime, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()
	if _, err := peer.AwaitCatalog(waitCtx); err != nil {
		return exitRuntime, fmt.Errorf("no file list from hub: %w", err)
	}

	// 5. Command
	switch command {
	case "serve":
		log.Info("Serving fragments, press Ctrl+C to stop", "user", config.Username)
		select {
		case <-ctx.Done():
		case <-supDone:
			return exitRuntime, fmt.Errorf("connection to hub lost")
		}
	case "upload":
		if err := upload(waitCtx, peer, operands); err != nil {
			return exitRuntime, err
		}
	case "download":
		for _, name := range operands {
			data, err := peer.Download(waitCtx, name)
			if err != nil {
				return exitRuntime, err
			}
			path, _ := files.Path(name)
			log.Info("Downloaded", "name", name, "size", len(data), "path", path)
		}
	}
	return exitOK, nil
}

func upload(ctx context.Context, peer *services.PeerService, paths []string) error {
	if dup := lo.FindDuplicates(lo.Map(paths, func(p string, _ int) string { return filepath.Base(p) })); len(dup) > 0 {
		return fmt.Errorf("%w: %v given twice", apperrors.ErrFileAlreadyExists, dup)
	}
	names := make([]string, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := filepath.Base(path)
		if err := peer.Upload(name, strconv.FormatInt(info.ModTime().UnixMilli(), 10), data); err != nil {
			return err
		}
		names = append(names, name)
	}
	_, err := peer.AwaitCatalog(ctx, names...)
	return err
}

func openFragmentStore(dir string, log *slog.Logger) (storage.IFragmentStore, func(), error) {
	if dir == "" {
		return storage.NewMemoryFragmentStore(), func() {}, nil
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, nil, fmt.Errorf("fragment store opening failed: %w", err)
	}
	return storage.NewBadgerFragmentStore(db, log), func() { _ = db.Close() }, nil
}

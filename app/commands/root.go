package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tikarammardi/ledis/app/config"
	"github.com/tikarammardi/ledis/app/httpapi"
	"github.com/tikarammardi/ledis/app/processor"
	"github.com/tikarammardi/ledis/app/server"
	"github.com/tikarammardi/ledis/app/snapshot"
	"github.com/tikarammardi/ledis/app/store"
)

const finalSaveTimeout = 30 * time.Second

// Execute runs the CLI application.
func Execute(version string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	err := newRootCmd(version).ExecuteContext(context.Background())
	if err != nil {
		slog.Error("command failed", "error", err.Error())
	}
	return err
}

func newRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "ledis",
		Short:         "In-memory key-value server speaking the Redis protocol",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, version)
		},
	}
	root.Flags().StringP("config", "c", "", "YAML config file (default: $"+config.EnvConfigFile+")")
	config.Default().BindFlags(root.Flags())
	return root
}

// loadConfig layers defaults, the config file, the environment and the
// flags that were passed, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv(config.EnvConfigFile)
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func run(ctx context.Context, cfg *config.Config, version string) error {
	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)
	logger.Info("starting", "version", version, "address", cfg.GetAddress())

	journal := snapshot.NewJournal()
	storeOpts := []store.Option{store.WithLogger(logger)}
	if cfg.DumpPath != "" {
		storeOpts = append(storeOpts, store.WithExpireHook(journal.Expired))
	}
	st := store.New(storeOpts...)
	factory := processor.NewHandlerFactory(st)
	factory.SetConfig(cfg)

	var snap *snapshot.Snapshotter
	if cfg.DumpPath != "" {
		db, err := snapshot.OpenSQLite(cfg.DumpPath)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		snap = snapshot.New(db, journal, st, snapshot.Options{
			Interval: cfg.SaveInterval,
			Changes:  cfg.SaveChanges,
		}, logger)
		factory.SetSaver(snap)
	}

	dispatcher := processor.NewDispatcher(st, logger, factory.CreateAllCommands()...)
	if snap != nil {
		dispatcher.SetRecorder(journal)
		if cfg.Restore {
			n, err := snap.Restore(ctx, dispatcher)
			switch {
			case errors.Is(err, snapshot.ErrNoSnapshot):
				logger.Info("no snapshot to restore")
			case err != nil:
				return fmt.Errorf("restore: %w", err)
			default:
				logger.Info("restored snapshot", "commands", n, "keys", st.Len(st.Now()))
			}
		}
	}

	cp := processor.NewCommandProcessor(dispatcher)
	srv := server.NewServer(cp, cfg, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	if cfg.HTTPAddress != "" {
		gin.SetMode(gin.ReleaseMode)
		router := httpapi.NewRouter(dispatcher, logger)
		g.Go(func() error { return httpapi.ListenAndServe(gctx, cfg.HTTPAddress, router, logger) })
	}
	if snap != nil {
		g.Go(func() error { return snap.Run(gctx) })
	}

	err := g.Wait()
	if snap != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), finalSaveTimeout)
		defer cancel()
		if saveErr := snap.Save(saveCtx); saveErr != nil {
			logger.Error("final save failed", "error", saveErr)
			err = errors.Join(err, saveErr)
		}
	}
	logger.Info("stopped")
	return err
}

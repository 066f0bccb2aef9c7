package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/idlease/idleased/pkg/clock"
	"github.com/idlease/idleased/pkg/config"
	"github.com/idlease/idleased/pkg/server"
	"github.com/idlease/idleased/pkg/server/leasepool"
)

const shutdownTimeout = 5 * time.Second

func setupLogging(serverConfig *config.ServerConfig) error {
	level, err := log.ParseLevel(serverConfig.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", serverConfig.LogLevel, err)
	}
	log.SetLevel(level)

	if serverConfig.LogFile != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   serverConfig.LogFile,
			MaxSize:    serverConfig.LogMaxSizeMB,
			MaxBackups: 3,
			Compress:   true,
		})
	}
	return nil
}

func runServer(serverConfig *config.ServerConfig) error {
	allocator, err := leasepool.NewAllocator(
		serverConfig.IDMin,
		serverConfig.IDMax,
		serverConfig.LeaseTimeoutMs,
		clock.System{},
	)
	if err != nil {
		return fmt.Errorf("failed to create allocator: %w", err)
	}

	srv := &http.Server{
		Addr:    serverConfig.Host + ":" + serverConfig.Port,
		Handler: server.New(allocator).Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("listening on: %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}

func main() {
	app := &cli.App{
		Name:  "idleased",
		Usage: "A daemon leasing numeric ids from a bounded pool under heartbeat-renewed leases.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (environment variables are used when omitted)",
			},
		},
		Action: func(ctx *cli.Context) error {
			serverConfig, err := config.GetServerConfig(ctx.String("config"))
			if err != nil {
				return fmt.Errorf("server config not found: %w", err)
			}
			if err := setupLogging(serverConfig); err != nil {
				return err
			}
			log.Infof("server config: %v", serverConfig)
			return runServer(serverConfig)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("server exited with error")
	}
}

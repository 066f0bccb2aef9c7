package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/idlease/idleased/pkg/client"
	"github.com/idlease/idleased/pkg/config"
)

func newClient(c *cli.Context) (*client.Client, error) {
	clientConfig, err := config.GetClientConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("client config not found: %w", err)
	}
	return client.New("http://" + clientConfig.ServerHost + ":" + clientConfig.ServerPort), nil
}

func acquireNext(c *cli.Context) error {
	apiClient, err := newClient(c)
	if err != nil {
		return err
	}

	lease, err := apiClient.Next(context.Background())
	if err != nil {
		return fmt.Errorf("failed to acquire id: %w", err)
	}

	log.Infof("acquired id: %d expires at: %d", lease.ID, lease.Exp)
	return nil
}

func heartbeat(c *cli.Context) error {
	apiClient, err := newClient(c)
	if err != nil {
		return err
	}

	lease, err := apiClient.Heartbeat(context.Background(), c.Int("id"))
	if err != nil {
		return fmt.Errorf("failed to heartbeat id %d: %w", c.Int("id"), err)
	}

	log.Infof("renewed id: %d expires at: %d", lease.ID, lease.Exp)
	return nil
}

func status(c *cli.Context) error {
	apiClient, err := newClient(c)
	if err != nil {
		return err
	}

	s, err := apiClient.Status(context.Background())
	if err != nil {
		return fmt.Errorf("failed to fetch status: %w", err)
	}

	log.Infof(
		"pool [%d, %d] timeout: %dms available: %d leased: %d reclaimed: %d",
		s.IDMin, s.IDMax, s.TimeoutMs, s.Available, s.Leased, s.Reclaimed,
	)
	return nil
}

// hold acquires an id and keeps renewing it until interrupted. A lease that
// lapses between renewals is replaced by acquiring a fresh id.
func hold(c *cli.Context) error {
	apiClient, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lease, err := apiClient.Next(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire id: %w", err)
	}
	log.Infof("holding id: %d expires at: %d", lease.ID, lease.Exp)

	interval := time.Duration(c.Int64("interval")) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infof("released id: %d (lease will lapse)", lease.ID)
			return nil
		case <-ticker.C:
			renewed, err := apiClient.Heartbeat(ctx, lease.ID)
			var apiErr *client.APIError
			if errors.As(err, &apiErr) {
				log.WithField("id", lease.ID).Warnf("lease lost: %v", apiErr)
				if lease, err = apiClient.Next(ctx); err != nil {
					return fmt.Errorf("failed to reacquire id: %w", err)
				}
				log.Infof("holding id: %d expires at: %d", lease.ID, lease.Exp)
				continue
			}
			if err != nil {
				if ctx.Err() != nil {
					log.Infof("released id: %d (lease will lapse)", lease.ID)
					return nil
				}
				return fmt.Errorf("failed to heartbeat id %d: %w", lease.ID, err)
			}
			lease = renewed
			log.Debugf("renewed id: %d expires at: %d", lease.ID, lease.Exp)
		}
	}
}

func main() {
	app := &cli.App{
		Name:  "idlease-cli",
		Usage: "A CLI for the idleased allocator daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (environment variables are used when omitted)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "next",
				Usage:  "Acquire the next available id",
				Action: acquireNext,
			},
			{
				Name:  "heartbeat",
				Usage: "Renew the lease on an id",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "id",
						Usage:    "Id to renew",
						Required: true,
					},
				},
				Action: heartbeat,
			},
			{
				Name:   "status",
				Usage:  "Show pool status",
				Action: status,
			},
			{
				Name:  "hold",
				Usage: "Acquire an id and renew it until interrupted",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:  "interval",
						Usage: "Renewal interval in milliseconds",
						Value: 1000,
					},
				},
				Action: hold,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Temutjin2k/rideshare-ledger/config"
	"github.com/Temutjin2k/rideshare-ledger/internal/adapter/http/handler"
	"github.com/Temutjin2k/rideshare-ledger/internal/adapter/http/server"
	kafkaadapter "github.com/Temutjin2k/rideshare-ledger/internal/adapter/kafka"
	rabbitadapter "github.com/Temutjin2k/rideshare-ledger/internal/adapter/rabbit"
	"github.com/Temutjin2k/rideshare-ledger/internal/service/auth"
	"github.com/Temutjin2k/rideshare-ledger/internal/service/ledger"
	"github.com/Temutjin2k/rideshare-ledger/internal/service/marketplace"
	"github.com/Temutjin2k/rideshare-ledger/internal/service/persistence"
	"github.com/Temutjin2k/rideshare-ledger/internal/service/reward"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	"github.com/Temutjin2k/rideshare-ledger/pkg/metrics"
	"github.com/Temutjin2k/rideshare-ledger/pkg/rabbit"
	ws "github.com/Temutjin2k/rideshare-ledger/pkg/wsHub"
)

const shutdownTimeout = 10 * time.Second

var ErrServiceNotInitialized = errors.New("service not initialized")

type App struct {
	httpServer *server.API
	snapshots  *persistence.Service
	hub        *ws.ConnectionHub

	closeStore func()
	rabbit     *rabbit.RabbitMQ
	broker     *rabbitadapter.NotificationBroker
	kafka      *kafkaadapter.LedgerPublisher

	liveHub *handler.NotificationHub

	cfg config.Config
	log logger.Logger
}

// NewApplication connects the configured backends and builds every component.
func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	a := &App{
		cfg: cfg,
		log: log,
	}

	if err := a.init(ctx); err != nil {
		a.closeBackends(ctx)
		return nil, err
	}

	return a, nil
}

func (a *App) init(ctx context.Context) error {
	store, closeStore, err := OpenStore(ctx, a.cfg, a.log)
	if err != nil {
		return fmt.Errorf("failed to init snapshot store: %w", err)
	}
	a.closeStore = closeStore
	persister := persistence.New(store, a.log)

	a.hub = ws.NewConnHub(a.log)
	a.hub.OnChange = func(total int) {
		metrics.WebSocketConnectionsGauge.WithLabelValues(a.cfg.App.Name).Set(float64(total))
	}
	a.liveHub = handler.NewNotificationHub(a.hub)

	// with a broker every instance receives the notification and pushes it to its own sockets
	var notifier marketplace.Notifier = a.liveHub
	if a.cfg.RabbitMQ.Enabled {
		a.rabbit, err = rabbit.New(ctx, a.cfg.RabbitMQ.GetDSN(), a.log)
		if err != nil {
			a.log.Error(ctx, "Failed to setup rabbitMQ", err)
			return err
		}
		a.broker, err = rabbitadapter.NewNotificationBroker(a.rabbit, a.log)
		if err != nil {
			a.log.Error(ctx, "Failed to declare notification exchange", err)
			return err
		}
		notifier = a.broker
	}

	var publisher ledger.EventPublisher
	if a.cfg.Kafka.Enabled {
		a.kafka = kafkaadapter.NewLedgerPublisher(a.cfg.Kafka.BrokerList(), a.cfg.Kafka.Topic)
		publisher = a.kafka
	}

	tokenLedger := ledger.New(persister, publisher, a.log)
	rides := marketplace.New(persister, a.log, notifier)
	rewards := reward.New(rides, tokenLedger, persister, a.log)
	tokens := auth.NewTokenService(a.cfg.Auth.JWTSecret, a.cfg.Auth.AccessTokenTTL, a.log)

	a.snapshots = persistence.NewService(persister, tokenLedger, rides, rewards)
	if err := a.snapshots.Restore(ctx); err != nil {
		a.log.Error(ctx, "Failed to restore snapshot", err)
		return err
	}

	a.httpServer, err = server.New(a.cfg, server.Services{
		Tokens:    tokens,
		Validator: tokens,
		Ledger:    tokenLedger,
		Rides:     rides,
		Rewards:   rewards,
		Snapshots: a.snapshots,
		Hub:       a.hub,
	}, a.log)
	if err != nil {
		a.log.Error(ctx, "Failed to setup http server", err)
		return err
	}

	return nil
}

// Run serves until SIGINT, SIGTERM or a server error, then shuts down.
func (a *App) Run(ctx context.Context) error {
	if a.httpServer == nil {
		return ErrServiceNotInitialized
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)

	a.httpServer.Run(ctx, errCh)
	defer func() {
		cancel()
		a.close(ctx)
		a.log.Info(ctx, "rideshare service closed")
	}()

	if a.broker != nil {
		go func() {
			if err := a.broker.ConsumeNotifications(ctx, a.liveHub.Notify); err != nil {
				a.log.Error(ctx, "notification consumer stopped", err)
			}
		}()
	}

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	a.log.Info(ctx, "Rideshare service has been started", "port", a.cfg.App.Port, "storage", a.cfg.Storage.Driver)

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		a.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	}
}

// close stops accepting requests, saves a final snapshot and releases the backends.
func (a *App) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	if a.snapshots != nil {
		if err := a.snapshots.SaveSnapshot(ctx); err != nil {
			a.log.Error(ctx, "Failed to save final snapshot", err)
		}
	}

	if a.hub != nil {
		a.hub.Close()
	}

	a.closeBackends(ctx)
}

func (a *App) closeBackends(ctx context.Context) {
	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			a.log.Warn(ctx, "Failed to close kafka writer", "error", err.Error())
		}
	}

	if a.rabbit != nil {
		if err := a.rabbit.Close(ctx); err != nil {
			a.log.Warn(ctx, "Failed to close rabbitMQ", "error", err.Error())
		}
	}

	if a.closeStore != nil {
		a.closeStore()
	}
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Temutjin2k/rideshare-ledger/config"
	"github.com/Temutjin2k/rideshare-ledger/internal/adapter/http/handler"
	"github.com/Temutjin2k/rideshare-ledger/internal/adapter/http/middleware"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
	ws "github.com/Temutjin2k/rideshare-ledger/pkg/wsHub"
)

const serverIPAddress = "%s:%s"

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers // routes/handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	health *handler.Health
	auth   *handler.Auth
	ledger *handler.Ledger
	ride   *handler.Ride
	reward *handler.Reward
	admin  *handler.Admin
	stream *handler.Stream
}

// Services groups everything the HTTP layer calls into.
type Services struct {
	Tokens    handler.TokenIssuer
	Validator middleware.TokenValidator
	Ledger    handler.LedgerService
	Rides     handler.RideService
	Rewards   handler.RewardService
	Snapshots handler.SnapshotService
	Hub       *ws.ConnectionHub
}

func (s Services) validate() error {
	switch {
	case s.Tokens == nil || s.Validator == nil:
		return errors.New("auth service is required")
	case s.Ledger == nil:
		return errors.New("ledger service is required")
	case s.Rides == nil:
		return errors.New("ride service is required")
	case s.Rewards == nil:
		return errors.New("reward service is required")
	case s.Snapshots == nil:
		return errors.New("snapshot service is required")
	case s.Hub == nil:
		return errors.New("websocket hub is required")
	}
	return nil
}

func New(cfg config.Config, services Services, logger logger.Logger) (*API, error) {
	if err := services.validate(); err != nil {
		return nil, err
	}

	admins := make([]models.Identity, 0, len(cfg.Auth.AdminList()))
	for _, raw := range cfg.Auth.AdminList() {
		id, err := models.ParseIdentity(raw)
		if err != nil || id.IsAnonymous() {
			return nil, fmt.Errorf("invalid admin identity %q", raw)
		}
		admins = append(admins, id)
	}

	handlers := &handlers{
		health: handler.NewHealth(cfg.App.Name, logger),
		auth:   handler.NewAuth(services.Tokens, logger),
		ledger: handler.NewLedger(services.Ledger, logger),
		ride:   handler.NewRide(services.Rides, logger),
		reward: handler.NewReward(services.Rewards, logger),
		admin:  handler.NewAdmin(services.Snapshots, logger),
		stream: handler.NewStream(services.Hub, services.Rides, cfg.WebSocket.PingInterval, logger),
	}

	api := &API{
		mux:    http.NewServeMux(),
		routes: handlers,
		m:      middleware.NewMiddleware(services.Validator, logger, admins...),
		addr:   fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.App.Port),
		cfg:    cfg,
		log:    logger,
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:              api.addr,
		Handler:           api.withMiddleware(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return api, nil
}

func (a *API) setupRoutes() {
	setupRoutes(a.mux, a.routes, a.m)
}

// Handler returns the full middleware chain, used by tests.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(
		a.m.RequestID(
			a.m.Logging(
				a.m.Metrics(a.cfg.App.Name, a.mux)(
					a.m.Auth(a.mux),
				),
			),
		),
	)
}

// Command api serves the travel-sharing HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-travelapp/internal/config"
	"backend-travelapp/internal/db"
	"backend-travelapp/internal/server"
	"backend-travelapp/internal/shared/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 5 * time.Second

var (
	mainDepsProvider = defaultDeps
	mainRunner       = realMain
	exit             = os.Exit
)

func main() {
	if code := mainRunner(mainDepsProvider()); code != 0 {
		exit(code)
	}
}

// resources are the backing stores shared by every request. Redis is
// optional; postgres is not.
type resources struct {
	pg    *pgxpool.Pool
	redis *redis.Client
}

func (r resources) close() {
	if r.pg != nil {
		r.pg.Close()
	}
	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			logging.Warn.Printf("closing redis: %v", err)
		}
	}
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, resources, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		notify:          signal.Notify,
		run:             Run,
	}
}

// realMain wires the process and returns its exit code.
func realMain(deps mainDeps) int {
	cfg := deps.loadConfig()

	pg, err := deps.connectPostgres(cfg)
	if err != nil {
		logging.Error.Printf("postgres connection failed: %v", err)
		return 1
	}
	res := resources{pg: pg, redis: deps.connectRedis(cfg)}
	if res.redis == nil {
		logging.Warn.Printf("redis disabled: notifications stay local and logins are not rate limited")
	}

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, res, signals, nil); err != nil {
		logging.Error.Printf("server exited with error: %v", err)
		return 1
	}
	return 0
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run serves until a signal arrives, ctx is done or the listener fails, then
// drains in-flight requests and releases res.
func Run(ctx context.Context, cfg config.Config, res resources, signals <-chan os.Signal, listen ListenFunc) error {
	var q db.Querier
	if res.pg != nil {
		q = res.pg
	}
	srv := server.NewServer(cfg, q, res.redis)
	defer res.close()
	defer srv.Close()

	if listen == nil {
		listen = defaultListen
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case sig := <-signals:
		logging.Info.Printf("received %v", sig)
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logging.Info.Printf("shutting down")
	return shutdownFn(srv.App, shutdownCtx)
}

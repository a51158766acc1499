package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"custodia/internal/audit"
	"custodia/internal/audit/publisher"
	"custodia/internal/domain"
	"custodia/internal/gate"
	"custodia/internal/platform/config"
	"custodia/internal/platform/httpserver"
	"custodia/internal/platform/logger"
	"custodia/internal/platform/metrics"
	platformredis "custodia/internal/platform/redis"
	"custodia/internal/records"
	"custodia/internal/session"
	"custodia/internal/token"
	httptransport "custodia/internal/transport/http"
	id "custodia/pkg/domain"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := newAuditStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.cleanup()

	m := metrics.New()

	recordStore := records.NewStore()
	recordStore.Seed()

	auth := session.NewStaticAuthenticator(devDirectory()...)
	registry := session.NewRegistry(auth, log)
	tokens := token.NewService(cfg.JWTSigningKey, cfg.TokenTTL)

	gateOpts := []gate.Option{
		gate.WithMetrics(m),
		gate.WithLogger(log),
	}

	var pub *publisher.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		pub, err = publisher.New(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		defer pub.Close()
		if err := pub.EnsureTopic(ctx, 3, 1); err != nil {
			return err
		}
		gateOpts = append(gateOpts, gate.WithMirror(pub))
		log.Info("audit mirror enabled", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	}

	g := gate.New(nil, backend.store, gateOpts...)
	engine := audit.NewEngine(backend.store)

	handler := httptransport.NewHandler(registry, engine, g, tokens, recordStore, m, log)
	if backend.health != nil {
		handler.AddHealthCheck(backend.name, backend.health)
	}
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting custodia", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if pub != nil {
		group.Go(func() error {
			if err := pub.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// storeBackend bundles a configured audit store with its teardown and the
// health probe /healthz consults for it.
type storeBackend struct {
	store   audit.Store
	cleanup func()
	name    string
	health  func(context.Context) error
}

// newAuditStore picks the backing store from config: postgres when a URL is
// set, otherwise redis when configured, otherwise in-memory.
func newAuditStore(ctx context.Context, cfg config.Server, log *slog.Logger) (storeBackend, error) {
	if cfg.PostgresURL != "" {
		db, err := audit.OpenPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return storeBackend{}, err
		}
		store := audit.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return storeBackend{}, err
		}
		log.Info("audit store: postgres")
		return storeBackend{
			store:   store,
			cleanup: func() { db.Close() },
			name:    "postgres",
			health:  db.PingContext,
		}, nil
	}

	if cfg.Redis.URL != "" {
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return storeBackend{}, err
		}
		log.Info("audit store: redis")
		return storeBackend{
			store:   audit.NewRedisStore(client.Client),
			cleanup: func() { client.Close() },
			name:    "redis",
			health:  client.Health,
		}, nil
	}

	log.Info("audit store: in-memory")
	return storeBackend{
		store:   audit.NewInMemoryStore(),
		cleanup: func() {},
	}, nil
}

// devDirectory is the development account set served by the static
// authenticator. Any non-empty secret is accepted for these accounts.
func devDirectory() []domain.Identity {
	return []domain.Identity{
		{
			ID:          id.NewUserID(),
			Email:       "smith@agency.example",
			Name:        "Officer Smith",
			Role:        domain.RoleInvestigator,
			Agency:      "Metro PD",
			BadgeNumber: "4471",
		},
		{
			ID:          id.NewUserID(),
			Email:       "garcia@agency.example",
			Name:        "Det. Garcia",
			Role:        domain.RoleEvidenceCustodian,
			Agency:      "Metro PD",
			BadgeNumber: "3310",
		},
		{
			ID:          id.NewUserID(),
			Email:       "admin@agency.example",
			Name:        "Admin Chen",
			Role:        domain.RoleAdmin,
			Agency:      "Metro PD",
			BadgeNumber: "0001",
		},
		{
			ID:          id.NewUserID(),
			Email:       "johnson@agency.example",
			Name:        "Officer Johnson",
			Role:        domain.RoleViewer,
			Agency:      "Metro PD",
			BadgeNumber: "5128",
		},
	}
}

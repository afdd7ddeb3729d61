// @title        Kernel API
// @version      1.0
// @description  OAuth login, per-user resource provisioning and article extraction for the Kernel front end.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/seckernel/kernel-api/internal/api"
	"github.com/seckernel/kernel-api/internal/api/handler"
	"github.com/seckernel/kernel-api/internal/core/ports"
	"github.com/seckernel/kernel-api/internal/core/service"
	"github.com/seckernel/kernel-api/internal/infrastructure/db/couchdb"
	"github.com/seckernel/kernel-api/internal/infrastructure/db/mongo"
	"github.com/seckernel/kernel-api/internal/infrastructure/db/redis"
	"github.com/seckernel/kernel-api/internal/infrastructure/extract"
	"github.com/seckernel/kernel-api/internal/infrastructure/oauth"
	"github.com/seckernel/kernel-api/internal/infrastructure/queue"
	"github.com/seckernel/kernel-api/internal/pkg/config"
	"github.com/seckernel/kernel-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(ctx)
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "kernel-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()
	states := redis.NewStateStore(rdb)

	store, closeStore, err := openResourceStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	provisioner := queue.NewDispatcher(0,
		service.NewResourceProvisioner(store, cfg.Store.Admin(), cfg.Timeouts.Store, log),
		log,
	)
	provisioner.Start(ctx)

	providers := identityProviders(cfg)
	if len(providers) == 0 {
		log.Warn().Msg("no identity provider configured, logins will fail")
	}

	auth := service.NewAuthService(
		providers,
		states,
		provisioner,
		service.NewJWTCodec(cfg.SecretKey),
		service.AuthConfig{
			FrontendURL:     cfg.FrontendURL,
			ProviderTimeout: cfg.Timeouts.Provider,
		},
		log,
	)

	parser := service.NewParserService(
		extract.NewFetcher(extract.NewSafeClient(cfg.Timeouts.Fetch), cfg.Fetch.MaxBytes),
		extract.NewExtractor(extract.NewSanitizer()),
		log,
	)

	e := api.NewRouter(api.Dependencies{
		Auth:   auth,
		Parser: parser,
		Readiness: map[string]handler.Pinger{
			"redis": states,
			"store": store,
		},
		CORSOrigins:       cfg.CORSOrigins,
		RateLimit:         cfg.RateLimit,
		MetricsRegisterer: prometheus.DefaultRegisterer,
		MetricsGatherer:   prometheus.DefaultGatherer,
		Log:               log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openResourceStore connects the configured per-user resource backend.
func openResourceStore(ctx context.Context, cfg *config.Config) (ports.ResourceStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreCouchDB:
		client, err := couchdb.Connect(ctx, couchdb.Config{
			URL:      cfg.Store.CouchDB.URL,
			User:     cfg.Store.CouchDB.User,
			Password: cfg.Store.CouchDB.Password,
		})
		if err != nil {
			return nil, nil, err
		}
		return couchdb.NewResourceStore(client), func() { _ = client.Close() }, nil
	case config.StoreMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Store.Mongo.URI,
			Database: cfg.Store.Mongo.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		return mongo.NewResourceStore(db), func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func identityProviders(cfg *config.Config) []ports.IdentityProvider {
	var providers []ports.IdentityProvider
	if cfg.Google.Enabled() {
		providers = append(providers, oauth.NewGoogle(oauthConfig(cfg, cfg.Google, oauth.ProviderGoogle)))
	}
	if cfg.GitHub.Enabled() {
		providers = append(providers, oauth.NewGitHub(oauthConfig(cfg, cfg.GitHub, oauth.ProviderGitHub)))
	}
	return providers
}

func oauthConfig(cfg *config.Config, client config.OAuthClientConfig, provider string) oauth.Config {
	return oauth.Config{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		RedirectURL:  fmt.Sprintf("%s/auth/%s/callback", strings.TrimRight(cfg.PublicBaseURL, "/"), provider),
	}
}

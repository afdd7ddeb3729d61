package couchdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	kivik "github.com/go-kivik/kivik/v4"
	"github.com/go-kivik/kivik/v4/couchdb"
)

const defaultTimeout = 5 * time.Second

// Config captures the settings for establishing a CouchDB connection.
type Config struct {
	URL      string
	User     string
	Password string
	Timeout  time.Duration
}

// Connect creates a kivik client for the CouchDB server and checks that it
// answers /_up. Credentials are sent with basic auth on every request.
func Connect(ctx context.Context, cfg Config) (*kivik.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var opts []kivik.Option
	if cfg.User != "" {
		opts = append(opts, couchdb.BasicAuth(cfg.User, cfg.Password))
	}

	client, err := kivik.New("couch", cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("couchdb client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	up, err := client.Ping(pingCtx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("couchdb ping: %w", err)
	}
	if !up {
		_ = client.Close()
		return nil, errors.New("couchdb ping: server is not up")
	}

	return client, nil
}

package couchdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	kivik "github.com/go-kivik/kivik/v4"

	"github.com/seckernel/kernel-api/internal/core/domain"
)

// ResourceStore maps each per-user resource to its own CouchDB database.
type ResourceStore struct {
	client *kivik.Client
}

func NewResourceStore(client *kivik.Client) *ResourceStore {
	return &ResourceStore{client: client}
}

func (s *ResourceStore) Exists(ctx context.Context, name string) (bool, error) {
	ok, err := s.client.DBExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("couchdb exists %s: %w", name, err)
	}
	return ok, nil
}

// Create returns domain.ErrResourceExists when CouchDB answers 412, which
// happens when another login created the database first.
func (s *ResourceStore) Create(ctx context.Context, name string) error {
	err := s.client.CreateDB(ctx, name)
	switch {
	case err == nil:
		return nil
	case kivik.HTTPStatus(err) == http.StatusPreconditionFailed:
		return domain.ErrResourceExists
	default:
		return fmt.Errorf("couchdb create %s: %w", name, err)
	}
}

// SetSecurity replaces the database's _security document.
func (s *ResourceStore) SetSecurity(ctx context.Context, name string, sec domain.SecurityDescriptor) error {
	err := s.client.DB(name).SetSecurity(ctx, &kivik.Security{
		Admins:  members(sec.Admins),
		Members: members(sec.Members),
	})
	if err != nil {
		return fmt.Errorf("couchdb security %s: %w", name, err)
	}
	return nil
}

func (s *ResourceStore) Ping(ctx context.Context) error {
	up, err := s.client.Ping(ctx)
	if err != nil {
		return err
	}
	if !up {
		return errors.New("couchdb is not up")
	}
	return nil
}

func members(p domain.Principals) kivik.Members {
	return kivik.Members{Names: p.Names, Roles: p.Roles}
}

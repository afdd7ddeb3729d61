package ports

import (
	"context"

	"github.com/seckernel/kernel-api/internal/core/domain"
)

// ResourceStore is the backing store holding per-user resources.
type ResourceStore interface {
	Exists(ctx context.Context, name string) (bool, error)
	// Create returns domain.ErrResourceExists when name is already taken.
	Create(ctx context.Context, name string) error
	SetSecurity(ctx context.Context, name string, sec domain.SecurityDescriptor) error
	Ping(ctx context.Context) error
}

// Provisioner ensures a subject's per-user resources exist and are private.
type Provisioner interface {
	EnsureResources(ctx context.Context, subjectID string) domain.ProvisionResult
}

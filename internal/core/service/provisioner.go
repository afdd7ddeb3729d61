package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seckernel/kernel-api/internal/core/domain"
	"github.com/seckernel/kernel-api/internal/core/ports"
	"github.com/seckernel/kernel-api/internal/pkg/metrics"
)

const (
	defaultStoreTimeout  = 5 * time.Second
	provisionConcurrency = 4
)

// ResourceProvisioner creates a subject's per-category resources on first
// login and re-asserts their security descriptor on every later one.
type ResourceProvisioner struct {
	store          ports.ResourceStore
	serviceAccount string
	timeout        time.Duration
	log            zerolog.Logger
}

// NewResourceProvisioner returns a provisioner. timeout bounds the store calls
// of each category; zero selects defaultStoreTimeout.
func NewResourceProvisioner(store ports.ResourceStore, serviceAccount string, timeout time.Duration, log zerolog.Logger) *ResourceProvisioner {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &ResourceProvisioner{
		store:          store,
		serviceAccount: serviceAccount,
		timeout:        timeout,
		log:            log,
	}
}

// EnsureResources provisions every category independently. A failing
// category never stops the others; inspect the result for failures.
func (p *ResourceProvisioner) EnsureResources(ctx context.Context, subjectID string) domain.ProvisionResult {
	categories := domain.Categories()
	result := domain.ProvisionResult{
		SubjectID: subjectID,
		Outcomes:  make([]domain.CategoryOutcome, len(categories)),
	}

	if subjectID == "" {
		for i, c := range categories {
			result.Outcomes[i] = domain.CategoryOutcome{Category: c, Err: domain.ErrEmptySubject}
		}
		return result
	}

	sec := domain.OwnerOnly(subjectID, p.serviceAccount)

	var g errgroup.Group
	g.SetLimit(provisionConcurrency)
	for i, c := range categories {
		g.Go(func() error {
			result.Outcomes[i] = p.ensure(ctx, subjectID, c, sec)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range result.Outcomes {
		metrics.ResourcesProvisionedTotal.WithLabelValues(string(o.Category), outcomeLabel(o)).Inc()
	}

	p.log.Debug().
		Str("subject", subjectID).
		Int("created", result.Created()).
		Strs("failed", result.FailedCategories()).
		Msg("per-user resources checked")

	return result
}

func (p *ResourceProvisioner) ensure(ctx context.Context, subjectID string, c domain.Category, sec domain.SecurityDescriptor) domain.CategoryOutcome {
	name := domain.ResourceName(subjectID, c)
	out := domain.CategoryOutcome{Category: c, Resource: name}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	exists, err := p.store.Exists(ctx, name)
	if err != nil {
		out.Err = fmt.Errorf("check %s: %w", name, err)
		return out
	}

	if !exists {
		err := p.store.Create(ctx, name)
		switch {
		case err == nil:
			out.Created = true
			p.log.Info().Str("resource", name).Msg("created per-user resource")
		case errors.Is(err, domain.ErrResourceExists):
			// A concurrent login for the same subject created it first.
		default:
			out.Err = fmt.Errorf("create %s: %w", name, err)
			return out
		}
	}

	if err := p.store.SetSecurity(ctx, name, sec); err != nil {
		out.Err = fmt.Errorf("secure %s: %w", name, err)
	}
	return out
}

func outcomeLabel(o domain.CategoryOutcome) string {
	switch {
	case o.Err != nil:
		return "failed"
	case o.Created:
		return "created"
	default:
		return "existing"
	}
}

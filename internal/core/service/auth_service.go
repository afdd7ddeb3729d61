package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/seckernel/kernel-api/internal/core/domain"
	"github.com/seckernel/kernel-api/internal/core/ports"
	"github.com/seckernel/kernel-api/internal/pkg/metrics"
)

const (
	defaultProviderTimeout = 10 * time.Second
	defaultStateTTL        = 10 * time.Minute
)

// AuthConfig carries the orchestrator settings taken from config.Config.
type AuthConfig struct {
	FrontendURL     string
	ProviderTimeout time.Duration
	StateTTL        time.Duration
}

// AuthService drives the OAuth login flow: provider callback, best-effort
// provisioning, credential issuance and the redirect back to the front end.
type AuthService struct {
	providers   map[string]ports.IdentityProvider
	states      ports.StateStore
	provisioner ports.Provisioner
	codec       ports.TokenCodec
	cfg         AuthConfig
	newState    func() string
	log         zerolog.Logger
}

func NewAuthService(
	providers []ports.IdentityProvider,
	states ports.StateStore,
	provisioner ports.Provisioner,
	codec ports.TokenCodec,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthService {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaultProviderTimeout
	}
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = defaultStateTTL
	}
	byName := make(map[string]ports.IdentityProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &AuthService{
		providers:   byName,
		states:      states,
		provisioner: provisioner,
		codec:       codec,
		cfg:         cfg,
		newState:    uuid.NewString,
		log:         log,
	}
}

func (s *AuthService) provider(name string) (ports.IdentityProvider, error) {
	p, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotConfigured, name)
	}
	return p, nil
}

// BeginLogin stores a fresh state nonce and returns the provider consent URL.
func (s *AuthService) BeginLogin(ctx context.Context, providerName string) (string, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return "", err
	}

	state := s.newState()
	if err := s.states.Save(ctx, state, p.Name(), s.cfg.StateTTL); err != nil {
		return "", fmt.Errorf("begin login: save state: %w", err)
	}

	s.transition(s.log.With().Str("provider", p.Name()).Logger(), domain.LoginRedirected)
	return p.AuthCodeURL(state), nil
}

// CompleteLogin handles the provider callback. Only identity verification can
// reject the attempt; provisioning problems are logged and the login proceeds.
func (s *AuthService) CompleteLogin(ctx context.Context, in ports.CallbackInput) (string, error) {
	p, err := s.provider(in.Provider)
	if err != nil {
		return "", err
	}
	log := s.log.With().Str("provider", p.Name()).Logger()
	s.transition(log, domain.LoginCallbackReceived)

	identity, err := s.verify(ctx, p, in)
	if err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrIdentityVerification) {
			outcome = "rejected"
			s.transition(log, domain.LoginRejected)
		}
		metrics.LoginsTotal.WithLabelValues(p.Name(), outcome).Inc()
		log.Warn().Err(err).Msg("login rejected")
		return "", err
	}
	log = log.With().Str("subject", identity.SubjectID).Logger()
	s.transition(log, domain.LoginIdentityVerified)

	result := s.provisioner.EnsureResources(ctx, identity.SubjectID)
	if perr := result.Err(); perr != nil {
		metrics.ProvisioningDegradedTotal.Inc()
		log.Error().
			Err(perr).
			Strs("failed_categories", result.FailedCategories()).
			Msg("provisioning degraded, continuing login")
	}
	s.transition(log, domain.LoginProvisioned)

	token, err := s.codec.Encode(identity.Claims(), domain.SessionTTL)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(p.Name(), "error").Inc()
		return "", fmt.Errorf("complete login: issue credential: %w", err)
	}
	s.transition(log, domain.LoginTokenIssued)

	metrics.LoginsTotal.WithLabelValues(p.Name(), "completed").Inc()
	s.transition(log, domain.LoginCompleted)
	return s.frontendRedirect(token), nil
}

// verify checks the callback parameters and state, then exchanges the code.
// Failures wrap domain.ErrIdentityVerification except state store outages.
func (s *AuthService) verify(ctx context.Context, p ports.IdentityProvider, in ports.CallbackInput) (*domain.Identity, error) {
	if in.Error != "" {
		reason := in.Error
		if in.ErrorDescription != "" {
			reason += ": " + in.ErrorDescription
		}
		return nil, fmt.Errorf("%w: provider returned %s", domain.ErrIdentityVerification, reason)
	}
	if in.Code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", domain.ErrIdentityVerification)
	}
	if in.State == "" {
		return nil, fmt.Errorf("%w: missing state", domain.ErrIdentityVerification)
	}

	owner, err := s.states.Consume(ctx, in.State)
	switch {
	case errors.Is(err, domain.ErrStateNotFound):
		return nil, fmt.Errorf("%w: %w", domain.ErrIdentityVerification, err)
	case err != nil:
		return nil, fmt.Errorf("complete login: consume state: %w", err)
	case owner != p.Name():
		return nil, fmt.Errorf("%w: state was issued for %s", domain.ErrIdentityVerification, owner)
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	start := time.Now()
	identity, err := p.Exchange(exchangeCtx, in.Code)
	metrics.ProviderExchangeDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIdentityVerification, err)
	}
	if identity.SubjectID == "" {
		return nil, fmt.Errorf("%w: provider returned no subject id", domain.ErrIdentityVerification)
	}
	if identity.Email == "" {
		return nil, fmt.Errorf("%w: provider returned no email", domain.ErrIdentityVerification)
	}
	return identity, nil
}

// frontendRedirect puts the credential in the URL fragment so it never reaches
// server logs.
func (s *AuthService) frontendRedirect(token string) string {
	return strings.TrimRight(s.cfg.FrontendURL, "/") + "/#token=" + token
}

// WhoAmI returns the profile snapshot embedded in the credential.
func (s *AuthService) WhoAmI(credential string) (*domain.Profile, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, domain.ErrUnauthenticated
	}
	claims, err := s.codec.Decode(credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCredential, err)
	}
	profile := domain.ProfileFromClaims(*claims)
	return &profile, nil
}

func (s *AuthService) transition(log zerolog.Logger, state domain.LoginState) {
	log.Debug().Str("state", string(state)).Msg("login state")
}

package domain

import "errors"

var (
	ErrProviderNotConfigured      = errors.New("identity provider not configured")
	ErrIdentityVerification       = errors.New("identity verification failed")
	ErrStateNotFound              = errors.New("login state not found or expired")
	ErrProvisioningPartialFailure = errors.New("per-user provisioning partially failed")
	ErrResourceExists             = errors.New("resource already exists")
	ErrEmptySubject               = errors.New("subject id is empty")
)

// Credential verification errors. Decode returns one of the first three;
// WhoAmI wraps them in ErrInvalidCredential.
var (
	ErrInvalidSignature    = errors.New("credential signature is invalid")
	ErrExpired             = errors.New("credential has expired")
	ErrMalformedCredential = errors.New("credential is malformed")
	ErrUnauthenticated     = errors.New("not authenticated")
	ErrInvalidCredential   = errors.New("could not validate credentials")
)

var ErrUnsupportedContent = errors.New("unsupported content type")

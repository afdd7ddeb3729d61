package domain

import "time"

// SessionTTL is the lifetime of every issued session credential.
const SessionTTL = 7 * 24 * time.Hour

const (
	DefaultDisplayName = "User"
	DefaultPlan        = "founder"
)

// LoginState names the steps of a single login attempt.
type LoginState string

const (
	LoginRedirected       LoginState = "redirected"
	LoginCallbackReceived LoginState = "callback_received"
	LoginIdentityVerified LoginState = "identity_verified"
	LoginProvisioned      LoginState = "provisioned"
	LoginTokenIssued      LoginState = "token_issued"
	LoginCompleted        LoginState = "completed"
	LoginRejected         LoginState = "rejected"
)

// Identity is the verified assertion an identity provider hands back for one
// login attempt. It is never persisted.
type Identity struct {
	Provider    string
	SubjectID   string
	Email       string
	DisplayName string
	AvatarURL   string
}

// Claims returns the credential claims for this identity. Timestamps are set
// by the codec.
func (i Identity) Claims() Claims {
	return Claims{
		SubjectID:   i.SubjectID,
		Email:       i.Email,
		DisplayName: i.DisplayName,
		AvatarURL:   i.AvatarURL,
	}
}

// Claims are the identity fields carried inside a session credential.
type Claims struct {
	SubjectID   string
	Email       string
	DisplayName string
	AvatarURL   string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Profile is the user view served by /api/v1/users/me. It is a snapshot of the
// credential taken at login time.
type Profile struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
	Plan      string
}

func ProfileFromClaims(c Claims) Profile {
	name := c.DisplayName
	if name == "" {
		name = DefaultDisplayName
	}
	return Profile{
		ID:        c.SubjectID,
		Email:     c.Email,
		Name:      name,
		AvatarURL: c.AvatarURL,
		Plan:      DefaultPlan,
	}
}

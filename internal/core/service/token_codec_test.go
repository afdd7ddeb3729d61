package service

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/seckernel/kernel-api/internal/core/domain"
)

var issuedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sampleClaims() domain.Claims {
	return domain.Claims{
		SubjectID:   "u1",
		Email:       "a@b.com",
		DisplayName: "Ada",
		AvatarURL:   "https://img.example/ada.png",
	}
}

func TestJWTCodec_RoundTrip(t *testing.T) {
	codec := NewJWTCodec("secret").WithClock(fixedClock(issuedAt))

	for _, ttl := range []time.Duration{time.Second, time.Hour, domain.SessionTTL} {
		token, err := codec.Encode(sampleClaims(), ttl)
		if err != nil {
			t.Fatalf("Encode(%s): %v", ttl, err)
		}

		got, err := codec.Decode(token)
		if err != nil {
			t.Fatalf("Decode(%s): %v", ttl, err)
		}

		want := sampleClaims()
		if got.SubjectID != want.SubjectID || got.Email != want.Email ||
			got.DisplayName != want.DisplayName || got.AvatarURL != want.AvatarURL {
			t.Fatalf("claims changed: got %+v want %+v", got, want)
		}
		if !got.IssuedAt.Equal(issuedAt) {
			t.Fatalf("unexpected issued_at: %v", got.IssuedAt)
		}
		if !got.ExpiresAt.Equal(issuedAt.Add(ttl)) {
			t.Fatalf("expires_at = %v, want %v", got.ExpiresAt, issuedAt.Add(ttl))
		}
	}
}

func TestJWTCodec_OptionalFieldsOmitted(t *testing.T) {
	codec := NewJWTCodec("secret").WithClock(fixedClock(issuedAt))
	token, err := codec.Encode(domain.Claims{SubjectID: "u1", Email: "a@b.com"}, time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.DisplayName != "" || got.AvatarURL != "" {
		t.Fatalf("expected empty optional fields, got %+v", got)
	}
}

func TestJWTCodec_ExpiredAtBoundary(t *testing.T) {
	ttl := time.Hour
	token, err := NewJWTCodec("secret").WithClock(fixedClock(issuedAt)).Encode(sampleClaims(), ttl)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	for _, at := range []time.Time{issuedAt.Add(ttl), issuedAt.Add(ttl + time.Second), issuedAt.Add(48 * time.Hour)} {
		_, err := NewJWTCodec("secret").WithClock(fixedClock(at)).Decode(token)
		if !errors.Is(err, domain.ErrExpired) {
			t.Fatalf("Decode at %v: expected ErrExpired, got %v", at, err)
		}
	}

	if _, err := NewJWTCodec("secret").WithClock(fixedClock(issuedAt.Add(ttl - time.Second))).Decode(token); err != nil {
		t.Fatalf("Decode just before expiry: %v", err)
	}
}

func TestJWTCodec_SignatureBitFlip(t *testing.T) {
	codec := NewJWTCodec("secret").WithClock(fixedClock(issuedAt))
	token, err := codec.Encode(sampleClaims(), time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	parts := strings.Split(token, ".")
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}

	for bit := 0; bit < len(sig)*8; bit++ {
		flipped := append([]byte(nil), sig...)
		flipped[bit/8] ^= 1 << (bit % 8)
		tampered := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(flipped)

		if _, err := codec.Decode(tampered); !errors.Is(err, domain.ErrInvalidSignature) {
			t.Fatalf("bit %d: expected ErrInvalidSignature, got %v", bit, err)
		}
	}
}

func TestJWTCodec_TamperedPayload(t *testing.T) {
	codec := NewJWTCodec("secret").WithClock(fixedClock(issuedAt))
	token, err := codec.Encode(sampleClaims(), time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	forged, err := NewJWTCodec("secret").WithClock(fixedClock(issuedAt)).Encode(domain.Claims{SubjectID: "attacker", Email: "x@y.z"}, time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	parts := strings.Split(token, ".")
	forgedParts := strings.Split(forged, ".")
	spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]

	if _, err := codec.Decode(spliced); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestJWTCodec_WrongSecret(t *testing.T) {
	token, err := NewJWTCodec("right").WithClock(fixedClock(issuedAt)).Encode(sampleClaims(), time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := NewJWTCodec("wrong").WithClock(fixedClock(issuedAt)).Decode(token); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestJWTCodec_RejectsOtherAlgorithms(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":   "u1",
		"email": "a@b.com",
		"exp":   issuedAt.Add(time.Hour).Unix(),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	codec := NewJWTCodec("secret").WithClock(fixedClock(issuedAt))
	if _, err := codec.Decode(token); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for alg none, got %v", err)
	}
}

func TestJWTCodec_Malformed(t *testing.T) {
	codec := NewJWTCodec("secret")
	for _, in := range []string{"", "not-a-token", "a.b", "a.b.c.d", "###.###.###"} {
		if _, err := codec.Decode(in); !errors.Is(err, domain.ErrMalformedCredential) {
			t.Fatalf("Decode(%q): expected ErrMalformedCredential, got %v", in, err)
		}
	}
}

func TestJWTCodec_MissingExpiry(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewJWTCodec("secret").Decode(token); !errors.Is(err, domain.ErrMalformedCredential) {
		t.Fatalf("expected ErrMalformedCredential, got %v", err)
	}
}

func TestJWTCodec_EncodeValidation(t *testing.T) {
	codec := NewJWTCodec("secret")
	if _, err := codec.Encode(domain.Claims{Email: "a@b.com"}, time.Hour); !errors.Is(err, domain.ErrEmptySubject) {
		t.Fatalf("expected ErrEmptySubject, got %v", err)
	}
	if _, err := codec.Encode(sampleClaims(), 0); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}

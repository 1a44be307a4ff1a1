package idp

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid provider token")

// Claims is what a verified provider token says about its holder.
type Claims struct {
	Subject string
	Name    string
	Expiry  time.Time
}

// Verifier checks a raw provider token locally before it is sent anywhere.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Claims, error)
}

// tokenClaims are the HS256 token claims: the standard set plus the
// display name.
type tokenClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// HMACVerifier accepts HS256 tokens signed with a shared secret.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret []byte) *HMACVerifier {
	return &HMACVerifier{secret: secret}
}

func (v *HMACVerifier) Verify(_ context.Context, raw string) (Claims, error) {
	claims := &tokenClaims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	return Claims{Subject: claims.Subject, Name: claims.Name, Expiry: claims.ExpiresAt.Time}, nil
}

// GenerateToken issues an HS256 token for subject, valid for
// validityDuration. Used for local development against a backend that
// shares the secret.
func GenerateToken(subject, name string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Name: name,
	})

	return token.SignedString(secretKey)
}

// OIDCVerifier checks ID tokens issued by an OpenID Connect provider for
// the configured client id.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the issuer's signing keys over the network.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to get OIDC provider: %w", err)
	}
	return &OIDCVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// NewStaticOIDCVerifier verifies against a fixed set of public keys
// without discovery.
func NewStaticOIDCVerifier(issuer, clientID string, keys ...crypto.PublicKey) *OIDCVerifier {
	ks := &oidc.StaticKeySet{PublicKeys: keys}
	return &OIDCVerifier{verifier: oidc.NewVerifier(issuer, ks, &oidc.Config{ClientID: clientID})}
}

func (v *OIDCVerifier) Verify(ctx context.Context, raw string) (Claims, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	var extra struct {
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
	}
	if err := idToken.Claims(&extra); err != nil {
		return Claims{}, fmt.Errorf("%w: claims extraction failed: %w", ErrInvalidToken, err)
	}

	name := extra.Name
	if name == "" {
		name = extra.PreferredUsername
	}
	return Claims{Subject: idToken.Subject, Name: name, Expiry: idToken.Expiry}, nil
}

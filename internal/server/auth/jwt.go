package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/identity/internal/common"
)

// Claims is the identity token payload. ImpersonatedBy is only present on
// tokens minted through the impersonation endpoint and names the root user
// that requested them.
type Claims struct {
	jwt.RegisteredClaims
	AccountID      string `json:"accountId"`
	UserID         string `json:"userId"`
	FriendlyName   string `json:"friendlyName"`
	ImpersonatedBy string `json:"impersonatedBy,omitempty"`
}

// TokenService signs and verifies identity tokens. The signing algorithm is
// selected from configuration: a private key passphrase implies an encrypted
// RSA private key (RS256); with no passphrase the secret is used directly as
// an HMAC key (HS256).
type TokenService struct {
	keys       *KeyChain
	passphrase string
	issuer     string
	validity   time.Duration
}

// NewTokenService creates a TokenService bound to the given key chain.
func NewTokenService(keys *KeyChain, passphrase, issuer string, validity time.Duration) *TokenService {
	return &TokenService{keys: keys, passphrase: passphrase, issuer: issuer, validity: validity}
}

// signingData resolves the signing key and method for the current
// configuration.
func (s *TokenService) signingData() (any, jwt.SigningMethod, error) {
	secret, err := s.keys.PrivateSecret()
	if err != nil {
		return nil, nil, err
	}
	if s.passphrase == "" {
		return secret, jwt.SigningMethodHS256, nil
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEMWithPassword(secret, s.passphrase)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing private signing key: %w", err)
	}
	return key, jwt.SigningMethodRS256, nil
}

// Sign stamps issuer, issue and expiry times onto claims and returns the
// signed token. Claims are never mutated after signing.
func (s *TokenService) Sign(claims *Claims) (string, error) {
	key, method, err := s.signingData()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims.Issuer = s.issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.validity))

	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string. Every failure mode (missing,
// malformed, bad signature, expired, wrong issuer) collapses to
// common.ErrInvalidToken; the specific cause is only visible in logs.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, common.ErrInvalidToken
	}

	material, err := s.keys.PublicSignature()
	if err != nil {
		return nil, err
	}

	keyFunc := func(t *jwt.Token) (any, error) {
		if pub, err := jwt.ParseRSAPublicKeyFromPEM(material); err == nil {
			return pub, nil
		}
		return material, nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc,
		jwt.WithValidMethods([]string{"HS256", "RS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"storefront/internal/domain/user"
)

type JWTConfig struct {
	Issuer        string
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// tokenKind is written into every token so an access token can never be
// replayed as a refresh token, even when both secrets are equal.
type tokenKind string

const (
	accessKind  tokenKind = "access"
	refreshKind tokenKind = "refresh"
)

type Claims struct {
	UserID int64     `json:"uid"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Kind   tokenKind `json:"typ"`
	jwt.RegisteredClaims
}

var (
	errInvalidToken = errors.New("invalid token")
	errWrongKind    = errors.New("token kind mismatch")
)

type JWTManager struct {
	issuer  string
	secrets map[tokenKind][]byte
	ttls    map[tokenKind]time.Duration
	parser  *jwt.Parser
}

func NewJWTManager(cfg JWTConfig) *JWTManager {
	return &JWTManager{
		issuer: cfg.Issuer,
		secrets: map[tokenKind][]byte{
			accessKind:  []byte(cfg.AccessSecret),
			refreshKind: []byte(cfg.RefreshSecret),
		},
		ttls: map[tokenKind]time.Duration{
			accessKind:  cfg.AccessTTL,
			refreshKind: cfg.RefreshTTL,
		},
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// SignAccess issues a short lived token carrying the user's current role.
func (m *JWTManager) SignAccess(u user.User) (string, time.Time, error) {
	return m.issue(accessKind, u)
}

func (m *JWTManager) SignRefresh(u user.User) (string, time.Time, error) {
	return m.issue(refreshKind, u)
}

func (m *JWTManager) ParseAccess(raw string) (*Claims, error) {
	return m.verify(accessKind, raw)
}

func (m *JWTManager) ParseRefresh(raw string) (*Claims, error) {
	return m.verify(refreshKind, raw)
}

func (m *JWTManager) issue(kind tokenKind, u user.User) (string, time.Time, error) {
	issuedAt := time.Now()
	expiresAt := issuedAt.Add(m.ttls[kind])
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   fmt.Sprint(u.ID),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}).SignedString(m.secrets[kind])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, expiresAt, nil
}

func (m *JWTManager) verify(kind tokenKind, raw string) (*Claims, error) {
	var claims Claims
	tok, err := m.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return m.secrets[kind], nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errInvalidToken
	}
	if claims.Kind != kind {
		return nil, errWrongKind
	}
	return &claims, nil
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/user"
)

func testJWT() *JWTManager {
	return NewJWTManager(JWTConfig{
		Issuer:        "storefront-test",
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	})
}

func shopper(id int64, email, role string) user.User {
	return user.User{ID: id, Email: email, Role: role, IsActive: true}
}

func TestJWTRoundTrip(t *testing.T) {
	m := testJWT()

	tok, exp, err := m.SignAccess(shopper(42, "a@shop.test", RoleAdmin))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, time.Minute)

	claims, err := m.ParseAccess(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@shop.test", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "storefront-test", claims.Issuer)
	assert.Equal(t, "42", claims.Subject)
}

func TestJWTSecretsAreNotInterchangeable(t *testing.T) {
	m := testJWT()

	refresh, _, err := m.SignRefresh(shopper(7, "u@shop.test", RoleUser))
	require.NoError(t, err)

	_, err = m.ParseAccess(refresh)
	assert.Error(t, err)

	_, err = m.ParseRefresh(refresh)
	assert.NoError(t, err)
}

func TestJWTKindIsCheckedWithSharedSecret(t *testing.T) {
	m := NewJWTManager(JWTConfig{
		Issuer:        "storefront-test",
		AccessSecret:  "same",
		RefreshSecret: "same",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})

	access, _, err := m.SignAccess(shopper(1, "u@shop.test", RoleUser))
	require.NoError(t, err)

	_, err = m.ParseRefresh(access)
	assert.ErrorIs(t, err, errWrongKind)
}

func TestJWTRefreshTokensAreUnique(t *testing.T) {
	m := testJWT()
	u := shopper(1, "u@shop.test", RoleUser)
	a, _, err := m.SignRefresh(u)
	require.NoError(t, err)
	b, _, err := m.SignRefresh(u)
	require.NoError(t, err)
	assert.NotEqual(t, HashToken(a), HashToken(b))
}

func TestJWTRejectsForeignIssuer(t *testing.T) {
	other := NewJWTManager(JWTConfig{Issuer: "someone-else", AccessSecret: "access-secret", AccessTTL: 5 * time.Minute})
	tok, _, err := other.SignAccess(shopper(1, "x@shop.test", RoleUser))
	require.NoError(t, err)

	_, err = testJWT().ParseAccess(tok)
	assert.Error(t, err)
}

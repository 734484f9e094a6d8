package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pintapoa/internal/domain"
)

func TestJWTManager_Issue(t *testing.T) {
	secret := "test-secret"
	m := NewJWTManager(secret)

	session, err := m.Issue("admin-123", "admin@pintapoa.com.br", "Admin", 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.NotEmpty(t, session.TokenID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), session.ExpiresAt, 5*time.Second)

	parsed, err := jwt.ParseWithClaims(session.Token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*sessionClaims)
	require.True(t, ok)
	assert.Equal(t, "admin-123", claims.Subject)
	assert.Equal(t, "admin@pintapoa.com.br", claims.Email)
	assert.Equal(t, "Admin", claims.Name)
	assert.Equal(t, session.TokenID, claims.ID)
}

func TestJWTManager_IssueUsesFreshTokenIDs(t *testing.T) {
	m := NewJWTManager("s")
	a, err := m.Issue("admin-1", "a@b.com", "", time.Hour)
	require.NoError(t, err)
	b, err := m.Issue("admin-1", "a@b.com", "", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a.TokenID, b.TokenID)
}

func TestJWTManager_Parse(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewJWTManager("test-secret")
	m.now = func() time.Time { return issued }
	session, err := m.Issue("admin-123", "admin@pintapoa.com.br", "", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		at      time.Time
		secret  string
		wantErr bool
	}{
		{name: "valid", token: session.Token, at: issued.Add(time.Minute), secret: "test-secret"},
		{name: "expired", token: session.Token, at: issued.Add(2 * time.Hour), secret: "test-secret", wantErr: true},
		{name: "wrong secret", token: session.Token, at: issued.Add(time.Minute), secret: "other", wantErr: true},
		{name: "garbage", token: "not-a-jwt", at: issued, secret: "test-secret", wantErr: true},
		{name: "empty", token: "", at: issued, secret: "test-secret", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewJWTManager(tt.secret)
			parser.now = func() time.Time { return tt.at }
			claims, err := parser.Parse(tt.token)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidToken)
				require.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "admin-123", claims.Subject)
			assert.Equal(t, session.TokenID, claims.TokenID)
			assert.Equal(t, "Admin", claims.Identity().DisplayName)
		})
	}
}

func TestJWTManager_ParseRejectsOtherAlgorithms(t *testing.T) {
	claims := sessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "jti",
		Issuer:    TokenIssuerName,
		Subject:   "admin-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewJWTManager("test-secret").Parse(token)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	raw, err := NewAccessToken(testSecret, 42, "alice@example.com", "CUSTOMER", time.Hour)
	require.NoError(t, err)

	claims, err := VerifyToken(testSecret, raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "CUSTOMER", claims.Role)
	assert.False(t, claims.IsRefresh())
	assert.Equal(t, Issuer, claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestRefreshTokenCarriesDiscriminator(t *testing.T) {
	raw, err := NewRefreshToken(testSecret, 42, "alice@example.com", "CUSTOMER")
	require.NoError(t, err)

	claims, err := VerifyToken(testSecret, raw)
	require.NoError(t, err)
	assert.True(t, claims.IsRefresh())
	assert.WithinDuration(t, time.Now().Add(RefreshTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyTokenExpired(t *testing.T) {
	raw, err := NewAccessToken(testSecret, 42, "alice@example.com", "CUSTOMER", -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenSignature)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	raw, err := NewAccessToken("other-secret", 42, "alice@example.com", "CUSTOMER", time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, raw)
	assert.ErrorIs(t, err, ErrTokenSignature)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyTokenMalformed(t *testing.T) {
	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		_, err := VerifyToken(testSecret, raw)
		assert.ErrorIs(t, err, ErrTokenMalformed, "input %q", raw)
	}
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "ok", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "missing header", header: "", wantErr: ErrNoAuthHeader},
		{name: "wrong scheme", header: "Token abc", wantErr: ErrBadAuthScheme},
		{name: "no space after scheme", header: "Bearerabc", wantErr: ErrBadAuthScheme},
		{name: "empty token", header: "Bearer ", wantErr: ErrEmptyBearer},
		{name: "blank token", header: "Bearer    ", wantErr: ErrEmptyBearer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearer(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenPreviewTruncates(t *testing.T) {
	assert.Equal(t, "short", TokenPreview("short"))
	long := "0123456789abcdefghij"
	preview := TokenPreview(long)
	assert.Equal(t, "0123456789ab...", preview)
	assert.NotContains(t, preview, long[13:])
}

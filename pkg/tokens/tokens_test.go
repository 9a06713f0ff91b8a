package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer() *Issuer {
	return &Issuer{
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}
}

func TestIssuer_Issue_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	pair, err := iss.Issue(7, "anna@example.com", []string{"ROLE_USER", "ROLE_ADMIN"})
	require.NoError(t, err)

	access, err := AccessClaimsFromToken(pair.AccessToken, iss.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), access.UserID)
	assert.Equal(t, "anna@example.com", access.Subject)
	assert.True(t, access.HasRole("ROLE_ADMIN"))
	assert.False(t, access.HasRole("ROLE_SUPER_ADMIN"))
	assert.NotEmpty(t, access.ID)
	assert.WithinDuration(t, pair.AccessExp, access.ExpiresAt.Time, time.Second)

	refresh, err := RefreshClaimsFromToken(pair.RefreshToken, iss.RefreshSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), refresh.UserID)
	assert.Equal(t, "anna@example.com", refresh.Subject)
	assert.WithinDuration(t, pair.RefreshExp, refresh.ExpiresAt.Time, time.Second)
}

func TestIssuer_TokensAreUniquePerIssue(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	a, err := iss.Issue(1, "a@example.com", nil)
	require.NoError(t, err)
	b, err := iss.Issue(1, "a@example.com", nil)
	require.NoError(t, err)

	assert.NotEqual(t, a.AccessToken, b.AccessToken)
	assert.NotEqual(t, a.RefreshToken, b.RefreshToken)
}

func TestClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	pair, err := iss.Issue(1, "a@example.com", nil)
	require.NoError(t, err)

	expired := &Issuer{
		AccessSecret:  iss.AccessSecret,
		RefreshSecret: iss.RefreshSecret,
		Now:           func() time.Time { return time.Now().Add(-2 * time.Hour) },
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Minute,
	}
	old, err := expired.Issue(1, "a@example.com", nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{
			name: "refresh presented as access",
			run: func() error {
				_, err := AccessClaimsFromToken(pair.RefreshToken, iss.RefreshSecret)
				return err
			},
			want: ErrWrongTokenType,
		},
		{
			name: "access presented as refresh",
			run: func() error {
				_, err := RefreshClaimsFromToken(pair.AccessToken, iss.AccessSecret)
				return err
			},
			want: ErrWrongTokenType,
		},
		{
			name: "wrong secret",
			run: func() error {
				_, err := AccessClaimsFromToken(pair.AccessToken, []byte("other"))
				return err
			},
			want: jwt.ErrTokenSignatureInvalid,
		},
		{
			name: "expired",
			run: func() error {
				_, err := RefreshClaimsFromToken(old.RefreshToken, iss.RefreshSecret)
				return err
			},
			want: jwt.ErrTokenExpired,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.run()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{header: "Bearer abc.def", want: "abc.def", ok: true},
		{header: "bearer abc", ok: false},
		{header: "Bearer ", ok: false},
		{header: "", ok: false},
		{header: "Basic dXNlcg==", ok: false},
	}

	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestSha256Hex(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Sha256Hex(""))
	assert.Len(t, Sha256Hex("token"), 64)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	ts := TokenService{
		Secret:   []byte("test-secret"),
		Issuer:   "vrhub",
		Duration: time.Hour,
	}

	u := &User{ID: "u1", Username: "alice", TokenVersion: 3}
	token, exp, err := ts.Sign(u)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, "vrhub", claims.Issuer)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	ts := TokenService{Secret: []byte("right"), Issuer: "vrhub", Duration: time.Hour}
	token, _, err := ts.Sign(&User{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	other := TokenService{Secret: []byte("wrong"), Issuer: "vrhub", Duration: time.Hour}
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	ts := TokenService{Secret: []byte("s"), Issuer: "vrhub", Duration: time.Hour}
	_, err := ts.Parse("not.a.token")
	assert.Error(t, err)
}

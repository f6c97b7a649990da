package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticVerifier(t *testing.T) {
	v := NewStaticVerifier("wolfnote", "s3cret")

	assert.True(t, v.Verify("wolfnote", "s3cret"))
	assert.False(t, v.Verify("wolfnote", "wrong"))
	assert.False(t, v.Verify("someone", "s3cret"))
	assert.False(t, v.Verify("", ""))
}

func TestJWTSignAndVerify(t *testing.T) {
	j := JWT{Secret: []byte("test-secret"), TokenTTL: time.Hour}

	token, expiresAt, err := j.Sign(Claims{Username: "wolfnote", SessionID: "abc"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "wolfnote", claims.Username)
	assert.Equal(t, "abc", claims.SessionID)
}

func TestJWTVerifyRejectsWrongSecret(t *testing.T) {
	j := JWT{Secret: []byte("test-secret"), TokenTTL: time.Hour}
	token, _, err := j.Sign(Claims{Username: "wolfnote", SessionID: "abc"})
	require.NoError(t, err)

	other := JWT{Secret: []byte("different"), TokenTTL: time.Hour}
	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestJWTVerifyRejectsGarbage(t *testing.T) {
	j := JWT{Secret: []byte("test-secret"), TokenTTL: time.Hour}
	_, err := j.Verify("not.a.token")
	assert.Error(t, err)
}

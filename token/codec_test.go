package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, secret string, ttl time.Duration, now func() time.Time) *Codec {
	t.Helper()

	c, err := NewCodec(Config{
		Secret: []byte(secret),
		TTL:    ttl,
		Issuer: "goAccounts-test",
		Now:    now,
	})
	require.NoError(t, err)
	return c
}

func TestNewCodecRejectsBadConfig(t *testing.T) {
	_, err := NewCodec(Config{Secret: nil, TTL: time.Minute})
	assert.Error(t, err)

	_, err = NewCodec(Config{Secret: []byte("s"), TTL: 0})
	assert.Error(t, err)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	c := newTestCodec(t, "access-secret-1", 10*time.Minute, nil)

	signed, err := c.Sign("acct-42")
	require.NoError(t, err)

	claims, err := c.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "acct-42", claims.ID)
}

func TestVerifyExpired(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	clock := func() time.Time { return now }

	c := newTestCodec(t, "access-secret-1", 10*time.Minute, clock)

	signed, err := c.Sign("acct-42")
	require.NoError(t, err)

	now = base.Add(9 * time.Minute)
	_, err = c.Verify(signed)
	require.NoError(t, err)

	now = base.Add(11 * time.Minute)
	_, err = c.Verify(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestCrossPurposeRejection(t *testing.T) {
	activation := newTestCodec(t, "activation-secret", 5*time.Minute, nil)
	access := newTestCodec(t, "access-secret", 10*time.Minute, nil)
	refresh := newTestCodec(t, "refresh-secret", 72*time.Hour, nil)

	signed, err := access.Sign("acct-42")
	require.NoError(t, err)

	_, err = refresh.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	activationToken, err := activation.SignActivation(Registrant{
		Name:  "Alice",
		Email: "alice@example.com",
	}, "1234")
	require.NoError(t, err)

	_, err = access.Verify(activationToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = refresh.Verify(activationToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestActivationRoundTrip(t *testing.T) {
	c := newTestCodec(t, "activation-secret", 5*time.Minute, nil)

	user := Registrant{
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
	}

	signed, err := c.SignActivation(user, "0417")
	require.NoError(t, err)

	claims, err := c.VerifyActivation(signed)
	require.NoError(t, err)
	assert.Equal(t, user, claims.User)
	assert.Equal(t, "0417", claims.ActivationCode)
}

func TestVerifyTampered(t *testing.T) {
	c := newTestCodec(t, "access-secret", 10*time.Minute, nil)

	signed, err := c.Sign("acct-42")
	require.NoError(t, err)

	tampered := signed[:len(signed)-2] + "xx"
	_, err = c.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = c.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

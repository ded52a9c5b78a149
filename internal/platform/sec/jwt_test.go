// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestSessionTokens_RoundTrip issues and verifies a token.
*/
func TestSessionTokens_RoundTrip(t *testing.T) {
	tokens, err := NewSessionTokens("super-secret-value", "charadex", time.Hour)
	require.NoError(t, err)

	signed, err := tokens.Issue("session-1")
	require.NoError(t, err)

	sessionID, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "session-1", sessionID)
}

/*
TestSessionTokens_Rejects covers tampering, foreign keys, and expiry.
*/
func TestSessionTokens_Rejects(t *testing.T) {
	tokens, err := NewSessionTokens("super-secret-value", "charadex", time.Hour)
	require.NoError(t, err)

	signed, err := tokens.Issue("session-1")
	require.NoError(t, err)

	// 1. Tampered signature
	_, err = tokens.Verify(signed + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// 2. Signed with another secret
	other, err := NewSessionTokens("another-secret-value", "charadex", time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// 3. Expired
	tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// 4. Garbage
	_, err = tokens.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

/*
TestNewSessionTokens_ShortSecret rejects trivially guessable secrets.
*/
func TestNewSessionTokens_ShortSecret(t *testing.T) {
	_, err := NewSessionTokens("short", "charadex", time.Hour)
	assert.Error(t, err)
}

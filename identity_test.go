/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestIdentityRoundTrip(t *testing.T) {
	ids, err := newIdentity(testKey, time.Hour)
	require.NoError(t, err)

	token, err := ids.issue("player-1")
	require.NoError(t, err)

	uid, err := ids.verify(token)
	require.NoError(t, err)
	assert.Equal(t, "player-1", uid)
}

func TestIdentityRejects(t *testing.T) {
	ids, err := newIdentity(testKey, time.Hour)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		now := time.Now()
		ids.now = func() time.Time { return now }
		defer func() { ids.now = time.Now }()

		token, err := ids.issue("player-1")
		require.NoError(t, err)

		now = now.Add(2 * time.Hour)
		_, err = ids.verify(token)
		assert.ErrorIs(t, err, errExpiredToken)
	})

	t.Run("other key", func(t *testing.T) {
		other, err := newIdentity("", time.Hour)
		require.NoError(t, err)

		token, err := other.issue("player-1")
		require.NoError(t, err)

		_, err = ids.verify(token)
		assert.ErrorIs(t, err, errInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, playerClaims{UID: "player-1"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ids.verify(token)
		assert.ErrorIs(t, err, errInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ids.verify("not-a-token")
		assert.ErrorIs(t, err, errInvalidToken)
	})
}

func TestSignIn(t *testing.T) {
	ids, err := newIdentity(testKey, time.Hour)
	require.NoError(t, err)

	t.Run("new player", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/session", nil)

		uid, token, err := ids.signIn(w, r, false)
		require.NoError(t, err)
		assert.NotEmpty(t, uid)
		assert.NotEmpty(t, token)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, tokenCookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("returning player keeps uid", func(t *testing.T) {
		token, err := ids.issue("player-7")
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodPost, "/api/session", nil)
		r.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})

		uid, _, err := ids.signIn(httptest.NewRecorder(), r, false)
		require.NoError(t, err)
		assert.Equal(t, "player-7", uid)
	})

	t.Run("stale cookie gets a new uid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/session", nil)
		r.AddCookie(&http.Cookie{Name: tokenCookieName, Value: "broken"})

		uid, _, err := ids.signIn(httptest.NewRecorder(), r, false)
		require.NoError(t, err)
		assert.NotEmpty(t, uid)
	})

	t.Run("bad bearer token is an error", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/session", nil)
		r.Header.Set("Authorization", "Bearer broken")

		_, _, err := ids.signIn(httptest.NewRecorder(), r, false)
		assert.ErrorIs(t, err, errInvalidToken)
	})
}

func TestActionLimiter(t *testing.T) {
	now := time.Unix(1000, 0)

	l := newActionLimiter(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("a"))
	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"), "burst exhausted")
	assert.True(t, l.allow("b"), "limits are per player")

	now = now.Add(time.Second)
	assert.True(t, l.allow("a"), "bucket refills")

	now = now.Add(time.Hour)
	assert.Equal(t, 2, l.prune(now.Add(-time.Minute)))
}

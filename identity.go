/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenCookieName = "sketchbook_token"

type playerClaims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// identity hands out stable anonymous player ids. The id lives in a signed
// token so any server sharing the key recognises a returning browser.
type identity struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

func newIdentity(key string, maxAge time.Duration) (*identity, error) {
	id := &identity{
		key:    []byte(key),
		maxAge: maxAge,
		now:    time.Now,
	}

	if key == "" {
		id.key = make([]byte, 32)
		if _, err := rand.Read(id.key); err != nil {
			return nil, err
		}
	}

	return id, nil
}

func (id *identity) issue(uid string) (string, error) {
	now := id.now()

	claims := playerClaims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(id.maxAge)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(id.key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return token, nil
}

func (id *identity) verify(tokenString string) (string, error) {
	claims := &playerClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return id.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(id.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errExpiredToken
		}
		return "", errInvalidToken
	}

	if !token.Valid || claims.UID == "" {
		return "", errInvalidToken
	}

	return claims.UID, nil
}

func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(tokenCookieName); err == nil {
		return c.Value
	}
	return ""
}

// player returns the uid behind the request's token.
func (id *identity) player(r *http.Request) (string, error) {
	token := requestToken(r)
	if token == "" {
		return "", errUnauthenticated
	}
	return id.verify(token)
}

// signIn keeps the uid of a still valid token, or mints a fresh anonymous
// one, and returns a newly issued token either way. A bearer token that does
// not verify is an error rather than a silent new identity.
func (id *identity) signIn(w http.ResponseWriter, r *http.Request, secure bool) (string, string, error) {
	uid, err := id.player(r)
	if err != nil {
		if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			return "", "", err
		}
		uid = uuid.NewString()
	}

	token, err := id.issue(uid)
	if err != nil {
		return "", "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(id.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})

	return uid, token, nil
}

/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Seednode/sketchbook/games"
	"github.com/rs/zerolog"
)

var (
	errUnauthenticated = errors.New("sign in first")
	errInvalidToken    = errors.New("session token is invalid")
	errExpiredToken    = errors.New("session token has expired")
	errRateLimited     = errors.New("slow down")
	errBadRequest      = errors.New("malformed request")
	errInvalidRoomCode = errors.New("room code must be 6 letters or digits")
)

func newLogger(cfg *Config, w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.verbose {
		level = zerolog.DebugLevel
	}

	if !cfg.jsonLogs {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: logDate}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// logf writes a debug line tagged with a scope such as SERVE or GAMES; it is
// only visible with --verbose.
func logf(cfg *Config, scope, format string, args ...any) {
	cfg.log.Debug().Str("scope", scope).Msgf(format, args...)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, games.ErrRoomNotFound),
		errors.Is(err, games.ErrBookNotFound):
		return http.StatusNotFound
	case errors.Is(err, games.ErrEmptyName),
		errors.Is(err, games.ErrEmptyContent),
		errors.Is(err, games.ErrInvalidImage),
		errors.Is(err, errBadRequest),
		errors.Is(err, errInvalidRoomCode):
		return http.StatusBadRequest
	case errors.Is(err, games.ErrAlreadyStarted),
		errors.Is(err, games.ErrRoomFull),
		errors.Is(err, games.ErrRoomChanged),
		errors.Is(err, games.ErrTooFewPlayers),
		errors.Is(err, games.ErrTooManyPlayers),
		errors.Is(err, games.ErrNothingToSubmit),
		errors.Is(err, games.ErrStalePage),
		errors.Is(err, games.ErrGameNotFinished):
		return http.StatusConflict
	case errors.Is(err, games.ErrNotHost),
		errors.Is(err, games.ErrNotInRoom):
		return http.StatusForbidden
	case errors.Is(err, errUnauthenticated),
		errors.Is(err, errInvalidToken),
		errors.Is(err, errExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

// writeError reports err to the client. Internal failures are logged and
// replaced with a generic message.
func writeError(cfg *Config, w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		cfg.log.Error().Err(err).Str("path", r.URL.Path).Str("ip", realIP(r)).Msg("request failed")
		msg = "An error has occurred. Please try again."
	} else {
		logf(cfg, "GAMES", "%s %s rejected: %v", r.Method, r.URL.Path, err)
	}

	writeJSON(w, status, map[string]string{"error": msg})
}

func newPage(prefix, title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(getFavicon(prefix))
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"%s/\">%s</a></body></html>", prefix, body))

	return htmlBody.String()
}

/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
	"time"

	"github.com/Seednode/sketchbook/games"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		port:         8080,
		maxImageSize: games.DefaultMaxImageSize,
		submitRate:   1,
		submitBurst:  5,
		tokenAge:     time.Hour,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, false},
		{"port zero", func(c *Config) { c.port = 0 }, false},
		{"port too high", func(c *Config) { c.port = 70000 }, false},
		{"tiny images", func(c *Config) { c.maxImageSize = 10 }, false},
		{"zero rate", func(c *Config) { c.submitRate = 0 }, false},
		{"zero burst", func(c *Config) { c.submitBurst = 0 }, false},
		{"short tokens", func(c *Config) { c.tokenAge = time.Second }, false},
		{"short key", func(c *Config) { c.tokenKey = "short" }, false},
		{"long key", func(c *Config) { c.tokenKey = testKey }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("SKETCHBOOK_PORT", "9090")
	t.Setenv("SKETCHBOOK_SUBMIT_BURST", "3")
	t.Setenv("SKETCHBOOK_TOKEN_AGE", "2h")

	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags([]string{"--submit-burst", "7"}))

	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, 2*time.Hour, cfg.tokenAge)
	assert.Equal(t, 7, cfg.submitBurst, "flags win over the environment")
	assert.Equal(t, games.DefaultMaxImageSize, cfg.maxImageSize)
}

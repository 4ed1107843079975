/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Seednode/sketchbook/games"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	databaseURL    string
	jsonLogs       bool
	maxImageSize   int
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	submitBurst    int
	submitRate     float64
	tlsCert        string
	tlsKey         string
	tokenAge       time.Duration
	tokenKey       string
	verbose        bool
	version        bool

	log zerolog.Logger
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.maxImageSize < 1024 {
		return fmt.Errorf("invalid max image size (must be at least 1024 bytes): %d", c.maxImageSize)
	}
	if c.submitRate <= 0 || c.submitBurst < 1 {
		return fmt.Errorf("invalid submit rate (rate must be positive and burst at least 1): %v/%d", c.submitRate, c.submitBurst)
	}
	if c.tokenAge < time.Minute {
		return fmt.Errorf("invalid token age (must be at least 1m): %s", c.tokenAge)
	}
	if c.tokenKey != "" && len(c.tokenKey) < 32 {
		return errors.New("token key must be at least 32 characters")
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// loadDotEnv reads a .env file from the working directory, if present, so its
// values are visible to the environment bindings below.
func loadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SKETCHBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "sketchbook",
		Short:         "Draw-and-guess telephone party game, where every player's sketchbook travels around the table.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			cfg.log = newLogger(cfg, cmd.ErrOrStderr())
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: SKETCHBOOK_BIND)")
	fs.StringVar(&cfg.databaseURL, "database-url", "", "postgres connection string; rooms are kept in memory when empty (env: SKETCHBOOK_DATABASE_URL)")
	fs.BoolVar(&cfg.jsonLogs, "json-logs", false, "write logs as JSON instead of console text (env: SKETCHBOOK_JSON_LOGS)")
	fs.IntVar(&cfg.maxImageSize, "max-image-size", games.DefaultMaxImageSize, "largest accepted drawing, in bytes of data URI (env: SKETCHBOOK_MAX_IMAGE_SIZE)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: SKETCHBOOK_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: SKETCHBOOK_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: SKETCHBOOK_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 2*time.Hour, "time before idle in-memory rooms are dropped, 0 to keep forever (env: SKETCHBOOK_SESSION_TIMEOUT)")
	fs.IntVar(&cfg.submitBurst, "submit-burst", 5, "actions a player may send in a burst (env: SKETCHBOOK_SUBMIT_BURST)")
	fs.Float64Var(&cfg.submitRate, "submit-rate", 1, "sustained actions per second allowed per player (env: SKETCHBOOK_SUBMIT_RATE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: SKETCHBOOK_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: SKETCHBOOK_TLS_KEY)")
	fs.DurationVar(&cfg.tokenAge, "token-age", 7*24*time.Hour, "lifetime of player session tokens (env: SKETCHBOOK_TOKEN_AGE)")
	fs.StringVar(&cfg.tokenKey, "token-key", "", "key for signing player session tokens; random per process when empty (env: SKETCHBOOK_TOKEN_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: SKETCHBOOK_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: SKETCHBOOK_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("sketchbook v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

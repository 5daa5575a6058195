// internal/config/config.go
//
// Runtime configuration.
// Every flag can also be set from the environment as JEOPARDY_<FLAG>, with
// dashes turned into underscores (e.g. --api-base → JEOPARDY_API_BASE).
// Precedence: explicit flag > environment (incl. .env) > default.

package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/robalobadob/jeopardy/internal/trivia"
)

const EnvPrefix = "JEOPARDY"

const (
	ModeRandom = "random"
	ModeDaily  = "daily"
)

// Config holds all server settings.
type Config struct {
	Bind string
	Port int

	APIBase     string
	HTTPTimeout time.Duration
	Categories  int
	Rows        int
	PoolSize    int
	Mode        string
	DailySalt   string

	CachePath string
	CacheTTL  time.Duration

	SessionSecret string
	SessionTTL    time.Duration
	SecureCookies bool

	LogLevel  string
	LogFormat string
}

// RegisterFlags declares every setting on fs with its default.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&c.Bind, "bind", "b", "0.0.0.0", "address to bind to")
	fs.IntVarP(&c.Port, "port", "p", 5175, "port to listen on")
	fs.StringVar(&c.APIBase, "api-base", "https://jservice.io/api/", "trivia API base URL")
	fs.DurationVar(&c.HTTPTimeout, "http-timeout", 15*time.Second, "per-request timeout for the trivia API (0 disables)")
	fs.IntVar(&c.Categories, "categories", trivia.DefaultCategoryCount, "categories (columns) per board")
	fs.IntVar(&c.Rows, "rows", trivia.DefaultRows, "clues (rows) per category; 0 keeps what the API returns")
	fs.IntVar(&c.PoolSize, "pool-size", trivia.DefaultPoolSize, "categories listed before sampling")
	fs.StringVar(&c.Mode, "mode", ModeRandom, "board selection: random or daily")
	fs.StringVar(&c.DailySalt, "daily-salt", "local_dev_salt", "salt for daily board seeds")
	fs.StringVar(&c.CachePath, "cache-path", "", "SQLite category cache path (empty disables)")
	fs.DurationVar(&c.CacheTTL, "cache-ttl", 24*time.Hour, "how long cached categories stay fresh")
	fs.StringVar(&c.SessionSecret, "session-secret", "dev_secret_change_me", "HMAC secret for session cookies")
	fs.DurationVar(&c.SessionTTL, "session-ttl", 60*time.Minute, "idle time before a session is dropped")
	fs.BoolVar(&c.SecureCookies, "secure-cookies", false, "mark session cookies Secure and SameSite=Strict (serve over HTTPS)")
	fs.StringVar(&c.LogLevel, "log-level", "info", "zerolog level")
	fs.StringVar(&c.LogFormat, "log-format", "json", "json or console")
}

// BindEnv fills unset flags from JEOPARDY_* environment variables.
func BindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.APIBase == "" {
		return errors.New("--api-base must not be empty")
	}
	if c.Categories < 1 {
		return fmt.Errorf("invalid category count: %d", c.Categories)
	}
	if c.Rows < 0 {
		return fmt.Errorf("invalid row count: %d", c.Rows)
	}
	if c.PoolSize < c.Categories {
		return fmt.Errorf("pool size %d is smaller than category count %d", c.PoolSize, c.Categories)
	}
	if c.Mode != ModeRandom && c.Mode != ModeDaily {
		return fmt.Errorf("unknown mode %q (want %s or %s)", c.Mode, ModeRandom, ModeDaily)
	}
	if c.SessionSecret == "" {
		return errors.New("--session-secret must not be empty")
	}
	return nil
}

// Addr returns host:port for the listener.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// BoardOptions returns the builder dimensions.
func (c *Config) BoardOptions() trivia.Options {
	return trivia.Options{
		CategoryCount: c.Categories,
		PoolSize:      c.PoolSize,
		Rows:          c.Rows,
	}
}

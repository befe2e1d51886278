package main

import (
	"os"
	"strconv"
	"time"

	"github.com/goliatone/go-logger/glog"
	auth "github.com/goliatone/tweeter-auth"
	"github.com/joho/godotenv"
)

// Config loads from the environment, with an optional .env file for
// local development
type Config struct {
	signingKey    string
	issuer        string
	audience      []string
	contextKey    string
	tokenLookup   string
	authScheme    string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	resetTTL      time.Duration
	singleSession bool
	address       string
	debug         bool
	persistence   Persistence
	smtp          auth.SMTPConfig
}

var _ auth.Config = (*Config)(nil)

// Persistence holds database settings
type Persistence struct {
	dsn         string
	driver      string
	server      string
	database    string
	debug       bool
	pingTimeout time.Duration
}

func (p Persistence) GetDSN() string                { return p.dsn }
func (p Persistence) GetDriver() string             { return p.driver }
func (p Persistence) GetServer() string             { return p.server }
func (p Persistence) GetDatabase() string           { return p.database }
func (p Persistence) GetDebug() bool                { return p.debug }
func (p Persistence) GetPingTimeout() time.Duration { return p.pingTimeout }
func (p Persistence) GetOtelIdentifier() string     { return "" }

func LoadConfig(logger glog.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	return &Config{
		signingKey:    envString("AUTH_SIGNING_KEY", "dev-signing-key-change-me"),
		issuer:        envString("AUTH_ISSUER", "tweeter-auth"),
		audience:      []string{envString("AUTH_AUDIENCE", "tweeter")},
		contextKey:    envString("AUTH_CONTEXT_KEY", "user"),
		tokenLookup:   envString("AUTH_TOKEN_LOOKUP", "header:Authorization"),
		authScheme:    envString("AUTH_SCHEME", "Bearer"),
		accessTTL:     envDuration("AUTH_ACCESS_TOKEN_TTL", 10*time.Minute),
		refreshTTL:    envDuration("AUTH_REFRESH_TOKEN_TTL", 48*time.Hour),
		resetTTL:      envDuration("AUTH_RESET_TOKEN_TTL", 5*time.Minute),
		singleSession: envBool("AUTH_SINGLE_SESSION", false),
		address:       envString("SERVER_ADDRESS", ":8572"),
		debug:         envBool("APP_DEBUG", false),
		persistence: Persistence{
			dsn:         envString("DB_DSN", "file::memory:?cache=shared"),
			driver:      envString("DB_DRIVER", "sqlite"),
			server:      envString("DB_SERVER", ""),
			database:    envString("DB_DATABASE", "tweeter"),
			debug:       envBool("DB_DEBUG", false),
			pingTimeout: envDuration("DB_PING_TIMEOUT", 5*time.Second),
		},
		smtp: auth.SMTPConfig{
			Host:     envString("SMTP_HOST", ""),
			Port:     envString("SMTP_PORT", "587"),
			Username: envString("SMTP_USERNAME", ""),
			Password: envString("SMTP_PASSWORD", ""),
			From:     envString("SMTP_FROM", "no-reply@tweeter.local"),
		},
	}
}

func (c *Config) GetSigningKey() string                  { return c.signingKey }
func (c *Config) GetSigningMethod() string               { return "HS256" }
func (c *Config) GetContextKey() string                  { return c.contextKey }
func (c *Config) GetTokenLookup() string                 { return c.tokenLookup }
func (c *Config) GetAuthScheme() string                  { return c.authScheme }
func (c *Config) GetIssuer() string                      { return c.issuer }
func (c *Config) GetAudience() []string                  { return c.audience }
func (c *Config) GetAccessTokenDuration() time.Duration  { return c.accessTTL }
func (c *Config) GetRefreshTokenDuration() time.Duration { return c.refreshTTL }
func (c *Config) GetResetTokenDuration() time.Duration   { return c.resetTTL }
func (c *Config) GetSingleSession() bool                 { return c.singleSession }
func (c *Config) GetServerAddress() string               { return c.address }
func (c *Config) GetDebug() bool                         { return c.debug }
func (c *Config) GetPersistence() Persistence            { return c.persistence }
func (c *Config) GetSMTP() auth.SMTPConfig               { return c.smtp }

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

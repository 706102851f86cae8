//go:generate config-getters -input ./config.go -output config_getters.go
package config

import (
	"fmt"
	"time"
)

// BaseConfig is the root configuration container loaded through go-config.
type BaseConfig struct {
	Server      Server      `json:"server" koanf:"server"`
	Persistence Persistence `json:"persistence" koanf:"persistence"`
	Auth        Auth        `json:"auth" koanf:"auth"`
}

func (a *BaseConfig) Validate() error {
	return a.Auth.Validate()
}

func (a *BaseConfig) GetServer() Server {
	return a.Server
}

func (a *BaseConfig) GetPersistence() Persistence {
	return a.Persistence
}

func (a *BaseConfig) GetAuth() Auth {
	return a.Auth
}

// Server holds the HTTP listener options.
type Server struct {
	Addr string `json:"addr" koanf:"addr"`
}

func (s Server) GetAddr() string {
	if s.Addr == "" {
		return ":8080"
	}
	return s.Addr
}

// Persistence holds the database options consumed by go-persistence-bun.
type Persistence struct {
	Debug                 bool   `json:"debug" koanf:"debug"`
	DSN                   string `json:"dsn" koanf:"dsn"`
	PingTimeoutExpression string `json:"ping_timeout" koanf:"ping_timeout"`
}

func (p Persistence) GetDebug() bool {
	return p.Debug
}

func (p Persistence) GetDSN() string {
	if p.DSN == "" {
		return "file::memory:?cache=shared"
	}
	return p.DSN
}

func (p Persistence) GetPingTimeout() time.Duration {
	if p.PingTimeoutExpression == "" {
		return 5 * time.Second
	}
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}

// Auth holds signing and guard options. There is no default secret; startup
// fails without one.
type Auth struct {
	SigningKey         string   `json:"signing_key" koanf:"signing_key"`
	TokenTTLExpression string   `json:"token_ttl" koanf:"token_ttl"`
	Issuer             string   `json:"issuer" koanf:"issuer"`
	Audience           []string `json:"audience" koanf:"audience"`
	ContextKey         string   `json:"context_key" koanf:"context_key"`
	TokenLookup        string   `json:"token_lookup" koanf:"token_lookup"`
	AuthScheme         string   `json:"auth_scheme" koanf:"auth_scheme"`
}

func (a Auth) Validate() error {
	if a.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is required")
	}
	if a.TokenTTLExpression != "" {
		if _, err := time.ParseDuration(a.TokenTTLExpression); err != nil {
			return fmt.Errorf("unable to parse auth.token_ttl %q: %w", a.TokenTTLExpression, err)
		}
	}
	return nil
}

func (a Auth) GetSigningKey() string {
	return a.SigningKey
}

func (a Auth) GetTokenTTL() time.Duration {
	if a.TokenTTLExpression == "" {
		return 24 * time.Hour
	}
	dur, err := time.ParseDuration(a.TokenTTLExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", a.TokenTTLExpression),
		)
	}
	return dur
}

func (a Auth) GetIssuer() string {
	return a.Issuer
}

func (a Auth) GetAudience() []string {
	return a.Audience
}

func (a Auth) GetContextKey() string {
	if a.ContextKey == "" {
		return "principal"
	}
	return a.ContextKey
}

func (a Auth) GetTokenLookup() string {
	if a.TokenLookup == "" {
		return "header:Authorization"
	}
	return a.TokenLookup
}

func (a Auth) GetAuthScheme() string {
	if a.AuthScheme == "" {
		return "Bearer"
	}
	return a.AuthScheme
}

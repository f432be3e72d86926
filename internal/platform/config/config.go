package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	// DefaultJWTSecret is only acceptable outside production.
	DefaultJWTSecret = "dev-secret-key-change-in-production"

	DefaultTokenTTL    = 7 * 24 * time.Hour
	DefaultCookieName  = "auth_token"
	DefaultAuditBuffer = 256

	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	Environment string
	JWTSecret   string
	TokenTTL    time.Duration
	CookieName  string
	DatabaseURL string
	LogLevel    string
	AuditBuffer int
	Admin       AdminSeed

	// envErrs holds values FromEnv could not parse; Validate reports them.
	envErrs []error
}

// AdminSeed describes the bootstrap admin account. Empty Email disables seeding.
type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

func (a AdminSeed) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

// IsProduction decides whether auth cookies carry the Secure attribute.
func (s Server) IsProduction() bool {
	return s.Environment == EnvProduction
}

// UseDatabase reports whether a Postgres store should back identity records.
func (s Server) UseDatabase() bool {
	return s.DatabaseURL != ""
}

// Validate rejects configurations that must never reach production.
func (s Server) Validate() error {
	if len(s.envErrs) > 0 {
		return errors.Join(s.envErrs...)
	}
	if s.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if s.IsProduction() && s.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if s.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if s.CookieName == "" {
		return errors.New("AUTH_COOKIE_NAME must not be empty")
	}
	return nil
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("INKWELL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	env := os.Getenv("INKWELL_ENV")
	if env == "" {
		env = EnvDevelopment
	}

	var envErrs []error

	tokenTTL := DefaultTokenTTL
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			envErrs = append(envErrs, fmt.Errorf("TOKEN_TTL: %w", err))
		} else {
			tokenTTL = d
		}
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = DefaultJWTSecret
	}

	cookieName := os.Getenv("AUTH_COOKIE_NAME")
	if cookieName == "" {
		cookieName = DefaultCookieName
	}

	auditBuffer := DefaultAuditBuffer
	if raw := os.Getenv("AUDIT_BUFFER"); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			envErrs = append(envErrs, fmt.Errorf("AUDIT_BUFFER: %w", err))
		case n < 0:
			envErrs = append(envErrs, errors.New("AUDIT_BUFFER must not be negative"))
		default:
			auditBuffer = n
		}
	}

	adminName := os.Getenv("ADMIN_NAME")
	if adminName == "" {
		adminName = "Administrator"
	}

	return Server{
		Addr:        addr,
		Environment: env,
		JWTSecret:   secret,
		TokenTTL:    tokenTTL,
		CookieName:  cookieName,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		AuditBuffer: auditBuffer,
		Admin: AdminSeed{
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
			Name:     adminName,
		},
		envErrs: envErrs,
	}
}

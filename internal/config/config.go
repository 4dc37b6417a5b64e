package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"lendmitra-backend/internal/provider"
)

type Config struct {
	AppPort string

	// OrgID is the tenant this process serves. Injected everywhere
	// explicitly; nothing reads it as a package global.
	OrgID       string
	Environment provider.Environment

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisPass string
	RedisDB   int

	JWTSecret string

	IdempTTLSecs int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:     getenv("APP_PORT", "8080"),
		OrgID:       getenv("ORG_ID", ""),
		Environment: provider.Environment(getenv("ENVIRONMENT", string(provider.EnvUAT))),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "lendmitra"),
		MySQLUser: getenv("MYSQL_USER", "lendmitra"),
		MySQLPass: getenv("MYSQL_PASS", "lendmitra"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisPass: os.Getenv("REDIS_PASS"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		IdempTTLSecs: 300,
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.OrgID == "" {
		return errors.New("missing ORG_ID")
	}
	if c.Environment != provider.EnvUAT && c.Environment != provider.EnvProduction {
		return fmt.Errorf("ENVIRONMENT must be %q or %q, got %q",
			provider.EnvUAT, provider.EnvProduction, c.Environment)
	}
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

package config

import (
	"fmt"
	"os"
	"sync"
)

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string

	// Credentials of the elevated role used by background jobs. Row-level
	// policies do not apply to this role.
	ServiceUser     string
	ServicePassword string
}

var (
	dbConfig *DBConfig
	dbOnce   sync.Once
)

func LoadDBConfig() *DBConfig {
	dbOnce.Do(func() {
		dbConfig = &DBConfig{
			Host:            os.Getenv("DB_HOST"),
			Port:            os.Getenv("DB_PORT"),
			User:            os.Getenv("DB_USER"),
			Password:        os.Getenv("DB_PASSWORD"),
			Name:            os.Getenv("DB_NAME"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			ServiceUser:     os.Getenv("DB_SERVICE_USER"),
			ServicePassword: os.Getenv("DB_SERVICE_PASSWORD"),
		}
	})
	return dbConfig
}

// DSN returns the connection string for the request-scoped role.
func (c *DBConfig) DSN() string {
	return c.dsn(c.User, c.Password)
}

// ServiceDSN returns the connection string for the elevated role, falling back
// to the request-scoped credentials when no service role is configured.
func (c *DBConfig) ServiceDSN() string {
	if c.ServiceUser == "" {
		return c.DSN()
	}
	return c.dsn(c.ServiceUser, c.ServicePassword)
}

func (c *DBConfig) HasServiceRole() bool {
	return c.ServiceUser != ""
}

func (c *DBConfig) dsn(user, password string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host,
		user,
		password,
		c.Name,
		c.Port,
		c.SSLMode,
		c.TimeZone,
	)
}

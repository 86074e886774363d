package postgres

import "fmt"

type Config struct {
	Host     string `env:"DB_HOST,default=localhost" validate:"required"`
	Port     int    `env:"DB_PORT,default=5432" validate:"required"`
	User     string `env:"DB_USER,default=postgres" validate:"required"`
	Password string `env:"DB_PASSWORD,default=postgres" validate:"required"`
	Name     string `env:"DB_NAME,default=socialrank" validate:"required"`
	SSLMode  string `env:"DB_SSL_MODE,default=disable" validate:"required"`
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

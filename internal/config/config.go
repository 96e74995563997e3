package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the storefront
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Storefront StorefrontConfig `yaml:"storefront"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// StorefrontConfig holds settings of the order-taking HTTP service
type StorefrontConfig struct {
	Port int `yaml:"port"`
	// StoreAccount receives the payment for every placed order
	StoreAccount   string `yaml:"store_account"`
	MigrationsPath string `yaml:"migrations_path"`
	// SignupCredit is the token balance granted to an account on first sign-in
	SignupCredit int64 `yaml:"signup_credit"`
}

// Load reads configuration from a YAML file and fills defaults
func Load(filename string) (*Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	return Parse(content)
}

// Parse decodes YAML configuration. Unknown keys are rejected.
func Parse(content []byte) (*Config, error) {
	config := &Config{}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyDefaults fills optional values left empty
func (c *Config) applyDefaults() {
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.RabbitMQ.Port == 0 {
		c.RabbitMQ.Port = 5672
	}
	if c.Storefront.Port == 0 {
		c.Storefront.Port = 3000
	}
	if c.Storefront.MigrationsPath == "" {
		c.Storefront.MigrationsPath = "migrations"
	}
}

// Validate checks the values every mode needs
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if c.RabbitMQ.Host == "" {
		return fmt.Errorf("rabbitmq.host is required")
	}
	if c.Storefront.StoreAccount == "" {
		return fmt.Errorf("storefront.store_account is required")
	}
	if c.Storefront.SignupCredit < 0 {
		return fmt.Errorf("storefront.signup_credit must not be negative")
	}
	return nil
}

// DatabaseURL returns a PostgreSQL connection URL with escaped credentials
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:     "/" + c.Database.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// RabbitMQURL returns an AMQP connection URL with escaped credentials
func (c *Config) RabbitMQURL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.RabbitMQ.User, c.RabbitMQ.Password),
		Host:   net.JoinHostPort(c.RabbitMQ.Host, strconv.Itoa(c.RabbitMQ.Port)),
		Path:   "/",
	}
	return u.String()
}

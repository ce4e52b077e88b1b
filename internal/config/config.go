package config

import (
	"errors"
	"fmt"
	"time"
)

// Config represents the server configuration stored in config.yaml
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// ServerConfig holds server metadata settings
type ServerConfig struct {
	Name string `yaml:"name"`
}

// AuthConfig holds token and password hashing settings
type AuthConfig struct {
	TokenTTLHours int `yaml:"token_ttl_hours"`
	BcryptCost    int `yaml:"bcrypt_cost"`
}

// DashboardConfig holds analytics window and page size settings
type DashboardConfig struct {
	WindowDays          int `yaml:"window_days"`
	DefaultSalesMonths  int `yaml:"default_sales_months"`
	MaxSalesMonths      int `yaml:"max_sales_months"`
	DefaultRecentOrders int `yaml:"default_recent_orders"`
	MaxRecentOrders     int `yaml:"max_recent_orders"`
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "Zippty Admin",
		},
		Auth: AuthConfig{
			TokenTTLHours: 7 * 24,
			BcryptCost:    12,
		},
		Dashboard: DashboardConfig{
			WindowDays:          30,
			DefaultSalesMonths:  6,
			MaxSalesMonths:      24,
			DefaultRecentOrders: 10,
			MaxRecentOrders:     100,
		},
	}
}

// TokenTTL returns the admin token validity horizon.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// Window returns the span of one comparison window.
func (d DashboardConfig) Window() time.Duration {
	return time.Duration(d.WindowDays) * 24 * time.Hour
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Server.Name == "" {
		c.Server.Name = def.Server.Name
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = def.Auth.TokenTTLHours
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = def.Auth.BcryptCost
	}
	if c.Dashboard.WindowDays == 0 {
		c.Dashboard.WindowDays = def.Dashboard.WindowDays
	}
	if c.Dashboard.DefaultSalesMonths == 0 {
		c.Dashboard.DefaultSalesMonths = def.Dashboard.DefaultSalesMonths
	}
	if c.Dashboard.MaxSalesMonths == 0 {
		c.Dashboard.MaxSalesMonths = def.Dashboard.MaxSalesMonths
	}
	if c.Dashboard.DefaultRecentOrders == 0 {
		c.Dashboard.DefaultRecentOrders = def.Dashboard.DefaultRecentOrders
	}
	if c.Dashboard.MaxRecentOrders == 0 {
		c.Dashboard.MaxRecentOrders = def.Dashboard.MaxRecentOrders
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.TokenTTLHours < 0 {
		errs = append(errs, errors.New("auth.token_ttl_hours must be positive"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be between 4 and 31, got %d", c.Auth.BcryptCost))
	}
	if c.Dashboard.WindowDays < 1 {
		errs = append(errs, errors.New("dashboard.window_days must be at least 1"))
	}
	if c.Dashboard.DefaultSalesMonths < 1 || c.Dashboard.DefaultSalesMonths > c.Dashboard.MaxSalesMonths {
		errs = append(errs, errors.New("dashboard.default_sales_months must be between 1 and max_sales_months"))
	}
	if c.Dashboard.DefaultRecentOrders < 1 || c.Dashboard.DefaultRecentOrders > c.Dashboard.MaxRecentOrders {
		errs = append(errs, errors.New("dashboard.default_recent_orders must be between 1 and max_recent_orders"))
	}
	return errors.Join(errs...)
}

// Package sheets mirrors result tables into Google Sheets.
package sheets

import (
	"errors"
	"time"
)

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	TokenFile          string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  "Constructo",
		TimeZone:         "America/Sao_Paulo",
		BatchSize:        500,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
		EnableFormatting: true,
	}
}

func (c *Config) hasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && (c.RefreshToken != "" || c.TokenFile != "")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasServiceAccount := c.ServiceAccountPath != ""

	switch {
	case !c.hasOAuth() && !hasServiceAccount:
		return errors.New("no authentication method configured")
	case c.hasOAuth() && hasServiceAccount:
		return errors.New("multiple authentication methods configured; use either OAuth2 or service account")
	case c.BatchSize <= 0:
		return errors.New("batch size must be positive")
	case c.RetryAttempts < 0:
		return errors.New("retry attempts cannot be negative")
	case c.RetryDelay < 0:
		return errors.New("retry delay cannot be negative")
	}

	return nil
}

// Package sheets writes the flattened metadata table to a Google Sheets tab.
package sheets

import (
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/facet-flow/internal/common"
)

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	// Tab is the sheet the table is written to; it is created when missing.
	Tab              string
	TimeZone         string
	BatchSize        int
	RetryAttempts    int
	RetryDelay       time.Duration
	EnableFormatting bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  "Facet Metadata",
		Tab:              "Metadata",
		EnableFormatting: true,
		TimeZone:         "UTC",
		BatchSize:        500,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

// LoadFromEnv fills unset fields from FACET_SHEETS_* environment variables.
func (c *Config) LoadFromEnv() {
	setFromEnv(&c.ClientID, "FACET_SHEETS_CLIENT_ID")
	setFromEnv(&c.ClientSecret, "FACET_SHEETS_CLIENT_SECRET")
	setFromEnv(&c.RefreshToken, "FACET_SHEETS_REFRESH_TOKEN")
	setFromEnv(&c.ServiceAccountPath, "FACET_SHEETS_SERVICE_ACCOUNT_PATH")
	setFromEnv(&c.SpreadsheetID, "FACET_SHEETS_SPREADSHEET_ID")
	setFromEnv(&c.SpreadsheetName, "FACET_SHEETS_SPREADSHEET_NAME")
	setFromEnv(&c.Tab, "FACET_SHEETS_TAB")
}

func setFromEnv(dst *string, key string) {
	if *dst != "" {
		return
	}
	*dst = os.Getenv(key)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("%w: no Google Sheets authentication method configured", common.ErrMissingConfig)
	}

	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("%w: use either OAuth2 or a service account, not both", common.ErrInvalidConfig)
	}

	if c.SpreadsheetID == "" && c.SpreadsheetName == "" {
		return fmt.Errorf("%w: spreadsheet id or name is required", common.ErrMissingConfig)
	}

	if c.Tab == "" {
		return fmt.Errorf("%w: tab name is required", common.ErrMissingConfig)
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", common.ErrInvalidConfig)
	}

	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}

	return nil
}

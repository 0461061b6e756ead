package config

import (
	"github.com/spf13/viper"

	"github.com/Veraticus/facet-flow/internal/sheets"
)

// LoadSheetsConfig builds the Google Sheets configuration. Viper keys under
// sheets.* take precedence over FACET_SHEETS_* environment variables.
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = ExpandPath(viper.GetString("sheets.service_account_path"))
	config.ClientID = viper.GetString("sheets.client_id")
	config.ClientSecret = viper.GetString("sheets.client_secret")
	config.RefreshToken = viper.GetString("sheets.refresh_token")
	config.SpreadsheetID = viper.GetString("sheets.spreadsheet_id")
	if v := viper.GetString("sheets.spreadsheet_name"); v != "" {
		config.SpreadsheetName = v
	}
	if v := viper.GetString("sheets.tab"); v != "" {
		config.Tab = v
	}
	if viper.IsSet("sheets.formatting") {
		config.EnableFormatting = viper.GetBool("sheets.formatting")
	}

	config.LoadFromEnv()
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

package config

import (
	"os"

	"github.com/Veraticus/constructo/internal/sheets"
	"github.com/spf13/viper"
)

// DefaultTokenFile is where "sheets auth" stores the OAuth2 token.
const DefaultTokenFile = "~/.config/constructo/sheets_token.json"

// LoadSheetsConfig loads Google Sheets configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or CONSTRUCTO_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	if v := viper.GetString("sheets.service_account_path"); v != "" {
		config.ServiceAccountPath = ExpandPath(v)
	}
	if v := viper.GetString("sheets.client_id"); v != "" {
		config.ClientID = v
	}
	if v := viper.GetString("sheets.client_secret"); v != "" {
		config.ClientSecret = v
	}
	if v := viper.GetString("sheets.refresh_token"); v != "" {
		config.RefreshToken = v
	}
	if v := viper.GetString("sheets.token_file"); v != "" {
		config.TokenFile = ExpandPath(v)
	}
	if v := viper.GetString("sheets.spreadsheet_id"); v != "" {
		config.SpreadsheetID = v
	}
	if v := viper.GetString("sheets.spreadsheet_name"); v != "" {
		config.SpreadsheetName = v
	}

	if config.ServiceAccountPath == "" {
		if v := os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"); v != "" {
			config.ServiceAccountPath = ExpandPath(v)
		}
	}
	if config.ClientID == "" {
		config.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if config.ClientSecret == "" {
		config.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if config.RefreshToken == "" {
		config.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if config.SpreadsheetID == "" {
		config.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	}
	if config.TokenFile == "" && config.RefreshToken == "" {
		if _, err := os.Stat(ExpandPath(DefaultTokenFile)); err == nil {
			config.TokenFile = ExpandPath(DefaultTokenFile)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

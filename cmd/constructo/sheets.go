package main

import (
	"fmt"
	"os"

	"github.com/Veraticus/constructo/internal/cli"
	"github.com/Veraticus/constructo/internal/config"
	"github.com/Veraticus/constructo/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func sheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Manage the Google Sheets mirror",
	}
	cmd.AddCommand(sheetsAuthCmd())
	return cmd
}

func sheetsAuthCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize constructo to write to Google Sheets",
		Long: `Run the OAuth2 consent flow in the browser and store the token so later
--sheets runs can upload results. Requires sheets.client_id and
sheets.client_secret (or GOOGLE_SHEETS_CLIENT_ID / GOOGLE_SHEETS_CLIENT_SECRET).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			oauth := sheets.OAuth2Config{
				ClientID:     firstNonEmpty(viper.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID")),
				ClientSecret: firstNonEmpty(viper.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")),
				TokenFile:    config.ExpandPath(firstNonEmpty(viper.GetString("sheets.token_file"), config.DefaultTokenFile)),
				CallbackAddr: addr,
			}
			if oauth.ClientID == "" || oauth.ClientSecret == "" {
				return fmt.Errorf("sheets.client_id and sheets.client_secret are required")
			}

			if _, err := sheets.Authenticate(cmd.Context(), oauth); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Google Sheets autorizado. Token salvo em "+oauth.TokenFile))
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "callback-addr", sheets.DefaultCallbackAddr, "address of the local OAuth callback server")

	return cmd
}

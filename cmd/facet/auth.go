package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/facet-flow/internal/cli"
	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/config"
	"github.com/Veraticus/facet-flow/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}
	cmd.AddCommand(authSheetsCmd())
	return cmd
}

func authSheetsCmd() *cobra.Command {
	var (
		listen    string
		tokenFile string
	)

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Obtain a Google Sheets refresh token",
		Long: `Run the OAuth2 consent flow for Google Sheets using sheets.client_id and
sheets.client_secret. The token is cached and its refresh token printed so it
can be stored as sheets.refresh_token.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clientID := viper.GetString("sheets.client_id")
			clientSecret := viper.GetString("sheets.client_secret")
			if clientID == "" || clientSecret == "" {
				return common.NewUserError("set sheets.client_id and sheets.client_secret first", common.ErrMissingConfig)
			}

			if tokenFile == "" {
				tokenFile = config.DefaultTokenPath()
			}

			out := cmd.OutOrStdout()
			token, err := sheets.GetOrCreateToken(cmd.Context(), sheets.OAuth2Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				TokenFile:    config.ExpandPath(tokenFile),
				ListenAddr:   listen,
				Open: func(url string) {
					fmt.Fprintln(out, cli.FormatInfo("Open this URL to authorize access:"))
					fmt.Fprintln(out, url)
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess("Authorized. Token cached at "+tokenFile))
			if token.RefreshToken != "" {
				fmt.Fprintln(out, "Refresh token: "+token.RefreshToken)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "localhost:8080", "callback listener address")
	cmd.Flags().StringVar(&tokenFile, "token-file", "", "token cache file (default: $HOME/.config/facet/sheets-token.json)")
	return cmd
}

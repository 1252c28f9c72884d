package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/caseapi-client/internal/constants"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseclient"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var apiKeyHeader string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store API credentials",
		Long:  "Verify an API endpoint and key by fetching a token and listing users, then save them to the config file. Values missing from --api, --token-url and --api-key are prompted for.",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			apiEndpoint := viper.GetString(keyAPI)
			if apiEndpoint == "" {
				apiEndpoint = prompt(reader, out, "API endpoint: ")
			}

			if apiEndpoint == "" {
				return constants.ErrNoAPIConfigured
			}

			tokenURL := viper.GetString(keyTokenURL)
			if tokenURL == "" {
				tokenURL = prompt(reader, out, "Token URL: ")
			}

			if tokenURL == "" {
				return constants.ErrNoTokenURL
			}

			apiKey := viper.GetString(keyAPIKey)
			if apiKey == "" {
				key, err := readSecret(cmd.InOrStdin(), reader, out, "API key: ")
				if err != nil {
					return fmt.Errorf("failed to read API key: %w", err)
				}

				apiKey = key
			}

			if apiKey == "" {
				return constants.ErrEmptyAPIKey
			}

			config := &caseapi.Config{
				APIEndpoint:  apiEndpoint,
				TokenURL:     tokenURL,
				APIKey:       apiKey,
				APIKeyHeader: firstNonEmpty(apiKeyHeader, viper.GetString(keyAPIKeyHeader)),
			}

			client, err := caseclient.New(cmd.Context(), config)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			err = verifyCredentials(cmd.Context(), client)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			saved := loadConfig()
			saved.API = caseclient.NormalizeEndpoint(apiEndpoint)
			saved.TokenURL = tokenURL
			saved.APIKey = apiKey
			saved.APIKeyHeader = config.APIKeyHeader
			saved.Token = ""

			err = saveConfigStruct(saved)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(out, "Logged in to %s\n", saved.API)

			return nil
		},
	}

	cmd.Flags().StringVar(&apiKeyHeader, "api-key-header", "", "header carrying the API key (default x-api-key)")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Long:  "Clear the API key and access token from the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.APIKey = ""
			config.Token = ""

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

			return nil
		},
	}
}

// verifyCredentials proves the key works with the cheapest authenticated
// call available.
func verifyCredentials(ctx context.Context, client caseapi.Client) error {
	if ctx == nil {
		ctx = context.Background()
	}

	_, err := client.Users().List(ctx, caseapi.NewQueryParams().WithPageSize(1))

	return err
}

func prompt(reader *bufio.Reader, out io.Writer, label string) string {
	_, _ = fmt.Fprint(out, label)
	line, _ := reader.ReadString('\n')

	return strings.TrimSpace(line)
}

// readSecret reads without echo when in is a terminal and falls back to a
// plain line read otherwise.
func readSecret(in io.Reader, reader *bufio.Reader, out io.Writer, label string) (string, error) {
	file, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return prompt(reader, out, label), nil
	}

	_, _ = fmt.Fprint(out, label)

	secret, err := term.ReadPassword(int(file.Fd()))
	if err != nil {
		return "", err
	}

	_, _ = fmt.Fprintln(out)

	return strings.TrimSpace(string(secret)), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

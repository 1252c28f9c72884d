package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/fivetwenty-io/caseapi-client/internal/constants"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseclient"
	"github.com/fivetwenty-io/caseapi-client/pkg/logging"
)

// SetupLogging configures the global logger from the verbose flag. Logs go to
// stderr so they never mix with command output.
func SetupLogging() {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LevelWarn
	cfg.Pretty = true
	cfg.Output = os.Stderr

	if viper.GetBool("verbose") {
		cfg.Level = logging.LevelDebug
	}

	logging.Setup(cfg)
}

// CreateClient builds an API client from the merged flag, environment and
// config file settings.
func CreateClient(ctx context.Context) (caseapi.Client, error) {
	config, err := buildClientConfig()
	if err != nil {
		return nil, err
	}

	client, err := caseclient.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

func buildClientConfig() (*caseapi.Config, error) {
	cfg := loadConfig()

	if cfg.API == "" {
		return nil, constants.ErrNoAPIConfigured
	}

	config := &caseapi.Config{
		APIEndpoint:  cfg.API,
		AccessToken:  cfg.Token,
		TokenURL:     cfg.TokenURL,
		APIKey:       cfg.APIKey,
		APIKeyHeader: cfg.APIKeyHeader,
		CacheTokens:  cfg.CacheTokens,
		MaxPageSize:  cfg.MaxPageSize,
		Headers:      cfg.Headers,
		Debug:        viper.GetBool("verbose"),
		Logger:       logging.NewAdapter(logging.NewLogger("casectl")),
	}

	if config.AccessToken == "" {
		if config.TokenURL == "" {
			return nil, constants.ErrNoTokenURL
		}

		if config.APIKey == "" {
			return nil, constants.ErrNoAPIKey
		}
	}

	if config.CacheTokens {
		cache, err := caseclient.TokenCacheFromURL(cfg.TokenCache)
		if err != nil {
			return nil, err
		}

		config.TokenCache = cache
	}

	return config, nil
}

package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/caseapi-client/internal/constants"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseclient"
)

// useConfigFile points viper at a config file in a temp dir.
func useConfigFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	viper.SetConfigFile(path)

	return path
}

func readConfigFile(t *testing.T, path string) Config {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var config Config
	require.NoError(t, yaml.Unmarshal(data, &config))

	return config
}

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		check   func(t *testing.T, c *Config)
		wantErr error
	}{
		{key: "api", value: "https://api.example.com", check: func(t *testing.T, c *Config) {
			assert.Equal(t, "https://api.example.com", c.API)
		}},
		{key: "token_url", value: "https://auth.example.com/token", check: func(t *testing.T, c *Config) {
			assert.Equal(t, "https://auth.example.com/token", c.TokenURL)
		}},
		{key: "api_key_header", value: "X-Key", check: func(t *testing.T, c *Config) {
			assert.Equal(t, "X-Key", c.APIKeyHeader)
		}},
		{key: "output", value: "json", check: func(t *testing.T, c *Config) {
			assert.Equal(t, "json", c.Output)
		}},
		{key: "cache_tokens", value: "true", check: func(t *testing.T, c *Config) {
			assert.True(t, c.CacheTokens)
		}},
		{key: "max_page_size", value: "500", check: func(t *testing.T, c *Config) {
			assert.Equal(t, 500, c.MaxPageSize)
		}},
		{key: "output", value: "xml", wantErr: constants.ErrInvalidOutputFormat},
		{key: "colour", value: "red", wantErr: constants.ErrInvalidConfigKey},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			config := &Config{}

			err := setConfigValue(config, tt.key, tt.value)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			tt.check(t, config)
		})
	}

	t.Run("bad bool", func(t *testing.T) {
		require.Error(t, setConfigValue(&Config{}, "cache_tokens", "maybe"))
	})

	t.Run("bad int", func(t *testing.T) {
		require.Error(t, setConfigValue(&Config{}, "max_page_size", "many"))
	})
}

func TestUnsetConfigValue(t *testing.T) {
	config := &Config{
		API:         "https://api.example.com",
		APIKey:      "secret",
		Output:      constants.FormatJSON,
		CacheTokens: true,
		MaxPageSize: 500,
	}

	require.NoError(t, unsetConfigValue(config, "api"))
	require.NoError(t, unsetConfigValue(config, "api_key"))
	require.NoError(t, unsetConfigValue(config, "output"))
	require.NoError(t, unsetConfigValue(config, "cache_tokens"))
	require.NoError(t, unsetConfigValue(config, "max_page_size"))

	assert.Equal(t, &Config{Output: constants.FormatTable}, config)
	require.ErrorIs(t, unsetConfigValue(config, "colour"), constants.ErrInvalidConfigKey)
}

func TestConfigMasked(t *testing.T) {
	config := &Config{API: "https://api.example.com", APIKey: "secret", Token: "abc"}

	masked := config.masked()
	assert.Equal(t, Masked, masked.APIKey)
	assert.Equal(t, Masked, masked.Token)
	assert.Equal(t, "https://api.example.com", masked.API)
	assert.Equal(t, "secret", config.APIKey)

	assert.Empty(t, (&Config{}).masked().APIKey)
}

func TestConfigSetCommandWritesFile(t *testing.T) {
	resetViper(t, nil)
	path := useConfigFile(t)

	out, err := execute(t, NewConfigCommand(), "set", "api", "https://api.example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "https://api.example.com")

	_, err = execute(t, NewConfigCommand(), "set", "api_key", "secret")
	require.NoError(t, err)

	saved := readConfigFile(t, path)
	assert.Equal(t, "https://api.example.com", saved.API)
	assert.Equal(t, "secret", saved.APIKey)
	assert.Equal(t, "https://api.example.com", viper.GetString(keyAPI))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())

	_, err = execute(t, NewConfigCommand(), "unset", "api_key")
	require.NoError(t, err)
	assert.Empty(t, readConfigFile(t, path).APIKey)
}

func TestConfigShowMasksSecrets(t *testing.T) {
	resetViper(t, map[string]interface{}{
		keyAPI:    "https://api.example.com",
		keyAPIKey: "secret",
		keyOutput: constants.FormatJSON,
	})

	out, err := execute(t, NewConfigCommand(), "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"api_key": "***"`)
	assert.NotContains(t, out, "secret")
}

func TestBuildClientConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]interface{}
		wantErr  error
		check    func(t *testing.T, c *caseapi.Config)
	}{
		{
			name:     "no api",
			settings: map[string]interface{}{},
			wantErr:  constants.ErrNoAPIConfigured,
		},
		{
			name:     "no token url",
			settings: map[string]interface{}{keyAPI: "https://api.example.com", keyAPIKey: "secret"},
			wantErr:  constants.ErrNoTokenURL,
		},
		{
			name:     "no api key",
			settings: map[string]interface{}{keyAPI: "https://api.example.com", keyTokenURL: "https://auth.example.com/token"},
			wantErr:  constants.ErrNoAPIKey,
		},
		{
			name:     "static token",
			settings: map[string]interface{}{keyAPI: "https://api.example.com", keyToken: "abc"},
			check: func(t *testing.T, c *caseapi.Config) {
				assert.Equal(t, "abc", c.AccessToken)
				assert.Nil(t, c.TokenCache)
				assert.NotNil(t, c.Logger)
			},
		},
		{
			name: "cached tokens in redis",
			settings: map[string]interface{}{
				keyAPI:         "https://api.example.com",
				keyTokenURL:    "https://auth.example.com/token",
				keyAPIKey:      "secret",
				keyCacheTokens: true,
				keyTokenCache:  "redis://localhost:6379/2",
				keyHeaders:     map[string]string{"X-Tenant": "acme"},
				"verbose":      true,
			},
			check: func(t *testing.T, c *caseapi.Config) {
				require.NotNil(t, c.TokenCache)
				assert.Equal(t, caseapi.CacheTypeRedis, c.TokenCache.Type)
				assert.Equal(t, map[string]string{"X-Tenant": "acme"}, c.Headers)
				assert.True(t, c.Debug)
			},
		},
		{
			name: "bad token cache",
			settings: map[string]interface{}{
				keyAPI:         "https://api.example.com",
				keyToken:       "abc",
				keyCacheTokens: true,
				keyTokenCache:  "memcached://localhost",
			},
			wantErr: caseclient.ErrInvalidCacheURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t, tt.settings)

			config, err := buildClientConfig()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			tt.check(t, config)
		})
	}
}

package commands

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCommand_Profiles(t *testing.T) {
	path := useTempConfig(t)

	out, err := execute(NewConfigCommand(), "add", "prod", "ps.example.com/", "--client-id", "app", "--client-secret", "s3cret")
	require.NoError(t, err)
	assert.Contains(t, out, "Added server prod (https://ps.example.com)")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())

	_, err = execute(NewConfigCommand(), "add", "test", "http://localhost:8282", "--username", "jdoe")
	require.NoError(t, err)

	config, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "prod", config.CurrentServer, "the first profile stays current")
	assert.Equal(t, "app", config.Servers["prod"].ClientID)
	assert.Equal(t, "jdoe", config.Servers["test"].Username)

	_, err = execute(NewConfigCommand(), "use", "test")
	require.NoError(t, err)

	_, err = execute(NewConfigCommand(), "use", "staging")
	require.ErrorIs(t, err, constants.ErrProfileNotFound)

	_, err = execute(NewConfigCommand(), "set", "group", "acme-docs", "--server", "prod")
	require.NoError(t, err)

	_, err = execute(NewConfigCommand(), "set", "colour", "red", "--server", "prod")
	require.ErrorIs(t, err, constants.ErrInvalidConfigKey)

	_, err = execute(NewConfigCommand(), "set", "output", "yaml")
	require.NoError(t, err)

	config, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", config.CurrentServer)
	assert.Equal(t, "acme-docs", config.Servers["prod"].Group)
	assert.Equal(t, "yaml", config.Output)

	_, err = execute(NewConfigCommand(), "remove", "test")
	require.NoError(t, err)

	config, err = loadConfig()
	require.NoError(t, err)
	assert.Empty(t, config.CurrentServer)
	assert.NotContains(t, config.Servers, "test")
}

func TestConfigCommand_ShowMasksSecrets(t *testing.T) {
	useTempConfig(t)

	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	addServer(t, "prod", &ServerConfig{
		Endpoint:       "https://ps.example.com",
		ClientID:       "app",
		ClientSecret:   "s3cret",
		Token:          "tok",
		TokenExpiresAt: &expires,
	})

	viper.Set("output", constants.FormatJSON)

	out, err := execute(NewConfigCommand(), "show")
	require.NoError(t, err)

	var shown Config
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "prod", shown.CurrentServer)
	assert.Equal(t, constants.MaskedSecret, shown.Servers["prod"].ClientSecret)
	assert.Equal(t, constants.MaskedSecret, shown.Servers["prod"].Token)
	assert.Equal(t, "app", shown.Servers["prod"].ClientID)

	config, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", config.Servers["prod"].ClientSecret, "the file keeps the secret")
}

func TestConfigCommand_ShowEmpty(t *testing.T) {
	useTempConfig(t)

	out, err := execute(NewConfigCommand(), "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No servers configured")
}

func TestCurrentServer(t *testing.T) {
	useTempConfig(t)

	_, _, err := currentServer(&Config{})
	require.ErrorIs(t, err, constants.ErrNoProfilesConfigured)

	config := &Config{Servers: map[string]*ServerConfig{"prod": {Endpoint: "https://ps.example.com"}}}

	_, _, err = currentServer(config)
	require.ErrorIs(t, err, constants.ErrNoCurrentProfile)

	viper.Set("server", "prod")

	name, server, err := currentServer(config)
	require.NoError(t, err)
	assert.Equal(t, "prod", name)
	assert.Equal(t, "https://ps.example.com", server.Endpoint)

	viper.Set("server", "dev")

	_, _, err = currentServer(config)
	require.ErrorIs(t, err, constants.ErrProfileNotFound)
}

func TestConfigPersister_UpdateToken(t *testing.T) {
	useTempConfig(t)
	addServer(t, "prod", &ServerConfig{Endpoint: "https://ps.example.com"})

	persister := NewConfigPersister()
	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, persister.UpdateToken("prod", "tok-1", expires))

	config, err := loadConfig()
	require.NoError(t, err)

	server := config.Servers["prod"]
	assert.Equal(t, "tok-1", server.Token)
	require.NotNil(t, server.TokenExpiresAt)
	assert.True(t, expires.Equal(*server.TokenExpiresAt))
	assert.NotNil(t, server.LastRefreshed)

	require.NoError(t, persister.UpdateToken("prod", "", time.Time{}))

	config, err = loadConfig()
	require.NoError(t, err)
	assert.Empty(t, config.Servers["prod"].Token)
	assert.Nil(t, config.Servers["prod"].TokenExpiresAt)

	err = persister.UpdateToken("dev", "tok", time.Time{})
	require.ErrorIs(t, err, constants.ErrProfileNotFound)
}

func TestResolveDefaults(t *testing.T) {
	useTempConfig(t)

	_, err := resolveGroup("")
	require.ErrorIs(t, err, constants.ErrGroupRequired)

	addServer(t, "prod", &ServerConfig{Endpoint: "https://ps.example.com", Username: "jdoe", Group: "acme-docs"})

	group, err := resolveGroup("")
	require.NoError(t, err)
	assert.Equal(t, "acme-docs", group)

	group, err = resolveGroup("other")
	require.NoError(t, err)
	assert.Equal(t, "other", group)

	member, err := resolveMember("")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", member, "falls back to the username")
}

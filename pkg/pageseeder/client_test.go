package pageseeder_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  pageseeder.Config
		wantErr []error
	}{
		{
			name:   "client credentials",
			config: pageseeder.Config{BaseURL: "https://ps.example.com", ClientID: "id", ClientSecret: "secret"},
		},
		{
			name:   "password grant",
			config: pageseeder.Config{BaseURL: "https://ps.example.com", ClientID: "id", Username: "jdoe", Password: "pw"},
		},
		{
			name:   "static token",
			config: pageseeder.Config{BaseURL: "https://ps.example.com", AccessToken: "tok"},
		},
		{
			name:    "missing secret",
			config:  pageseeder.Config{BaseURL: "https://ps.example.com", ClientID: "id"},
			wantErr: []error{pageseeder.ErrIncompleteCredentials},
		},
		{
			name:    "password without client",
			config:  pageseeder.Config{BaseURL: "https://ps.example.com", Username: "jdoe", Password: "pw"},
			wantErr: []error{pageseeder.ErrPasswordNeedsClient},
		},
		{
			name: "several problems at once",
			config: pageseeder.Config{
				BaseURL:      "https://ps.example.com",
				ClientID:     "id",
				Username:     "jdoe",
				RetryWaitMin: 2 * time.Second,
				RetryWaitMax: time.Second,
				TokenStore:   &pageseeder.TokenStoreConfig{Type: pageseeder.TokenStoreNATS},
			},
			wantErr: []error{
				pageseeder.ErrIncompletePassword,
				pageseeder.ErrInvalidRetryWindow,
				pageseeder.ErrNATSConfigRequired,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.Validate()
			if len(tt.wantErr) == 0 {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)

			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestConfig_ValidateRequiresBaseURL(t *testing.T) {
	t.Parallel()

	err := (&pageseeder.Config{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base URL is required")
}

func TestHCLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := pageseeder.NewDefaultLogger(&buf, "debug", false)
	logger.Debug("fetched", map[string]interface{}{"status": 200, "path": "/ps/service/groups/g"})
	logger.Named("auth").Warn("renewing", nil)

	out := buf.String()
	assert.Contains(t, out, "[DEBUG]")
	assert.Contains(t, out, "pageseeder: fetched")
	assert.Contains(t, out, "path=/ps/service/groups/g status=200")
	assert.Contains(t, out, "pageseeder.auth: renewing")

	pageseeder.NewHCLogger(nil).Error("discarded", nil)
}

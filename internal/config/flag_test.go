package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "webhook session",
			args: []string{"-m", "webhook", "-w", "http://hook.local/upload", "photo.png"},
			expected: &Config{
				Mode:       ModeWebhook,
				WebhookURL: "http://hook.local/upload",
			},
		},
		{
			name: "managed backend",
			args: []string{"-e", "http://127.0.0.1:9000", "-k", "key", "-s", "secret", "-b", "imgs", "-metrics", ":9100"},
			expected: &Config{
				Mode:          ModeManaged,
				BackendURL:    "http://127.0.0.1:9000",
				BackendKey:    "key",
				BackendSecret: "secret",
				Bucket:        "imgs",
				MetricsAddr:   ":9100",
			},
		},
		{
			name:    "unknown mode",
			args:    []string{"-m", "fax"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Mode: ModeManaged}
			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

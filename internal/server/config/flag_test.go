package config

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-m", ":9191", "-d", "db", "-s", "secret",
				"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
				"-t", "http://stt", "-l", "hi", "-w", "8", "-q", "16", "-v", "debug",
			},
			expected: &Config{
				EndpointAddrGRPC:      "127.0.0.1:9090",
				MetricsAddr:           ":9191",
				DatabaseDSN:           "db",
				SecretKey:             "secret",
				S3RootUser:            "user",
				S3RootPassword:        "password",
				S3Bucket:              "bucket",
				S3Region:              "us-west-1",
				S3BaseEndpoint:        "http://endpoint",
				TranscriptionURL:      "http://stt",
				TranscriptionLanguage: "hi",
				Workers:               8,
				QueueSize:             16,
				LogLevel:              "debug",
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"cmd", "-config", "x.json", "-env", "x.env", "-w", "2"},
			expected: &Config{Workers: 2},
		},
		{
			name:        "bad int panics",
			args:        []string{"cmd", "-w", "many"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

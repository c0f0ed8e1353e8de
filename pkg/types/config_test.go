package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend",
			config:  Config{DataDir: "/tmp/termsync"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend",
			config:  Config{Backend: "mysql", DataDir: "/tmp/termsync"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "backend names are case sensitive",
			config:  Config{Backend: "SQLite", DataDir: "/tmp/termsync"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:   "sqlite",
			config: Config{Backend: BackendSQLite, DataDir: "/tmp/termsync"},
		},
		{
			name:   "empty data dir is left to Attach",
			config: Config{Backend: BackendSQLite},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfigWithDefaults(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   Config
	}{
		{
			name:   "blank backend selects sqlite",
			config: Config{DataDir: "/var/lib/termsync"},
			want:   Config{Backend: BackendSQLite, DataDir: "/var/lib/termsync"},
		},
		{
			name:   "whitespace is trimmed",
			config: Config{Backend: "  ", DataDir: " /var/lib/termsync\n"},
			want:   Config{Backend: BackendSQLite, DataDir: "/var/lib/termsync"},
		},
		{
			name:   "explicit backend is kept",
			config: Config{Backend: "mysql", DataDir: "/data"},
			want:   Config{Backend: "mysql", DataDir: "/data"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.config.WithDefaults()
			assert.Equal(t, tt.want, got)
			if tt.want.Backend == BackendSQLite {
				assert.NoError(t, got.Validate())
			}
		})
	}
}

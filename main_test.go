package main

import (
	"blogposts/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    domain.Config
		wantErr bool
	}{
		{
			name: "dev defaults",
			env:  map[string]string{"ENV": "dev"},
			want: domain.Config{DatabaseURL: defaultDatabaseURL, Port: 8080, Environment: "dev", CertCacheDir: "/var/www/.cache"},
		},
		{
			name:    "pro requires database url",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name: "explicit values",
			env: map[string]string{
				"DATABASE_URL":   "sqlite://./blog.db",
				"PORT":           "3000",
				"TLS_HOST":       "blog.example.com",
				"CERT_CACHE_DIR": "/tmp/certs",
			},
			want: domain.Config{DatabaseURL: "sqlite://./blog.db", Port: 3000, Environment: "pro", TLSHost: "blog.example.com", CertCacheDir: "/tmp/certs"},
		},
		{
			name:    "bad port",
			env:     map[string]string{"ENV": "dev", "PORT": "http"},
			wantErr: true,
		},
		{
			name:    "unknown env",
			env:     map[string]string{"ENV": "staging", "DATABASE_URL": "sqlite://x.db"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"ENV", "DATABASE_URL", "PORT", "TLS_HOST", "CERT_CACHE_DIR"} {
				t.Setenv(k, tt.env[k])
			}

			got, err := loadConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

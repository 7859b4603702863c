package core

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	InitValidators()
	os.Exit(m.Run())
}

func validConfig() *Config {
	return &Config{
		Organization:   "compiler-class",
		RequestTimeout: 30 * time.Second,
		MaxConcurrent:  5,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string // empty means the config is valid
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			// the token is prompted later, never required up front
			name:   "valid without token",
			mutate: func(c *Config) { c.GithubToken = "" },
		},
		{
			name:      "missing organization",
			mutate:    func(c *Config) { c.Organization = "" },
			wantField: "organization",
		},
		{
			name:      "zero concurrency",
			mutate:    func(c *Config) { c.MaxConcurrent = 0 },
			wantField: "maxConcurrent",
		},
		{
			name:      "excessive concurrency",
			mutate:    func(c *Config) { c.MaxConcurrent = 64 },
			wantField: "maxConcurrent",
		},
		{
			name:      "sub-second request timeout",
			mutate:    func(c *Config) { c.RequestTimeout = 100 * time.Millisecond },
			wantField: "requestTimeout",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := validConfig()
			tt.mutate(conf)

			err := conf.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Validate() error = %v, want a ValidationError", err)
			}
			for _, fld := range vErr.Fields {
				if strings.Contains(fld.Field, tt.wantField) {
					return
				}
			}
			t.Errorf("Fields = %+v, want one for %q", vErr.Fields, tt.wantField)
		})
	}
}

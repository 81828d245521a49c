/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/fleetradar/pkg/models"
)

// Env loading tests mutate process-wide environment variables via
// t.Setenv, so none of the tests in this file run in parallel.

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "core.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

func TestLoadAndValidateFromFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := writeConfigFile(t, `{
		"listen_addr": ":8090",
		"api_key": "secret",
		"cors": {
			"allowed_origins": ["http://localhost:3000"],
			"allow_credentials": true
		}
	}`)

	var cfg models.CoreServiceConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg)
	require.NoError(t, err)

	assert.Equal(t, ":8090", cfg.ListenAddr)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.CORS.AllowCredentials)

	// Validate fills the optional fields with defaults.
	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 50, cfg.DefaultPageSize)
	assert.Equal(t, 500, cfg.MaxPageSize)
	assert.Equal(t, 30, cfg.ActiveWindowDays)
	assert.NotNil(t, cfg.Logging)
}

func TestLoadAndValidateMissingFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	var cfg models.CoreServiceConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), filepath.Join(t.TempDir(), "missing.json"), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestLoadAndValidateValidationFailure(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := writeConfigFile(t, `{"api_key": "secret"}`)

	var cfg models.CoreServiceConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen_addr is required")
}

func TestLoadAndValidateInvalidSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "consul")

	var cfg models.CoreServiceConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), "ignored.json", &cfg)
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestLoadAndValidateFromEnvironment(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("FLEETRADAR_LISTEN_ADDR", ":9090")
	t.Setenv("FLEETRADAR_API_KEY", "env-secret")
	t.Setenv("FLEETRADAR_CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("FLEETRADAR_CORS_ALLOW_CREDENTIALS", "true")
	t.Setenv("FLEETRADAR_MAX_UPLOAD_BYTES", "1024")
	t.Setenv("FLEETRADAR_DEFAULT_PAGE_SIZE", "10")
	t.Setenv("FLEETRADAR_MAX_PAGE_SIZE", "20")
	t.Setenv("FLEETRADAR_ACTIVE_WINDOW_DAYS", "7")

	var cfg models.CoreServiceConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "env-secret", cfg.APIKey)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.CORS.AllowCredentials)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, 10, cfg.DefaultPageSize)
	assert.Equal(t, 20, cfg.MaxPageSize)
	assert.Equal(t, 7, cfg.ActiveWindowDays)
}

func TestLoadFromEnvironmentCustomPrefix(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("CONFIG_ENV_PREFIX", "FR_")
	t.Setenv("FR_LISTEN_ADDR", ":8000")

	var cfg models.CoreServiceConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg)
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.ListenAddr)
}

func TestLoadFromEnvironmentConfigJSONWins(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("FLEETRADAR_CONFIG_JSON", `{"listen_addr": ":7070"}`)
	t.Setenv("FLEETRADAR_LISTEN_ADDR", ":9090")

	var cfg models.CoreServiceConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg)
	require.NoError(t, err)

	// The JSON blob takes precedence over individual variables.
	assert.Equal(t, ":7070", cfg.ListenAddr)
}

func TestLoadFromEnvironmentSkipsUnparseableField(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("FLEETRADAR_LISTEN_ADDR", ":9090")
	t.Setenv("FLEETRADAR_MAX_PAGE_SIZE", "lots")

	var cfg models.CoreServiceConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	// The bad value is skipped, so Validate applies the default.
	assert.Equal(t, 500, cfg.MaxPageSize)
}

type envLoaderTarget struct {
	Timeout time.Duration     `json:"timeout"`
	Labels  map[string]string `json:"labels"`
	Ratio   float64           `json:"ratio"`
	Retries uint              `json:"retries"`
}

func TestEnvLoaderFieldKinds(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "90s")
	t.Setenv("TEST_LABELS", `{"team":"fleet"}`)
	t.Setenv("TEST_RATIO", "0.25")
	t.Setenv("TEST_RETRIES", "3")

	var target envLoaderTarget

	loader := NewEnvConfigLoader(nil, "TEST_")
	require.NoError(t, loader.Load(context.Background(), "", &target))

	assert.Equal(t, 90*time.Second, target.Timeout)
	assert.Equal(t, map[string]string{"team": "fleet"}, target.Labels)
	assert.InDelta(t, 0.25, target.Ratio, 0.0001)
	assert.Equal(t, uint(3), target.Retries)
}

func TestEnvLoaderRejectsBadDestination(t *testing.T) {
	loader := NewEnvConfigLoader(nil, "TEST_")

	err := loader.Load(context.Background(), "", models.CoreServiceConfig{})
	require.ErrorIs(t, err, ErrDstMustBeNonNilPointer)

	value := "not a struct"
	err = loader.Load(context.Background(), "", &value)
	require.ErrorIs(t, err, ErrDstMustBePointerToStruct)
}

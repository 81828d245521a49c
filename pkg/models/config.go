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

package models

import (
	"fmt"

	"github.com/carverauto/fleetradar/pkg/logger"
)

var errListenAddrRequired = fmt.Errorf("listen_addr is required")

const (
	defaultMaxUploadBytes  = 16 << 20
	defaultPageSize        = 50
	defaultMaxPageSize     = 500
	defaultActiveWindowDay = 30
)

// CORSConfig controls cross-origin access for the HTTP API and the
// summary WebSocket stream.
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// CoreServiceConfig configures the core inventory service.
type CoreServiceConfig struct {
	ListenAddr       string         `json:"listen_addr"`
	APIKey           string         `json:"api_key,omitempty"`
	CORS             CORSConfig     `json:"cors,omitempty"`
	MaxUploadBytes   int64          `json:"max_upload_bytes,omitempty"`
	DefaultPageSize  int            `json:"default_page_size,omitempty"`
	MaxPageSize      int            `json:"max_page_size,omitempty"`
	ActiveWindowDays int            `json:"active_window_days,omitempty"`
	Logging          *logger.Config `json:"logging,omitempty"`
}

// Validate checks required fields and applies defaults for the rest.
func (c *CoreServiceConfig) Validate() error {
	if c.ListenAddr == "" {
		return errListenAddrRequired
	}

	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = defaultMaxUploadBytes
	}

	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = defaultPageSize
	}

	if c.MaxPageSize <= 0 {
		c.MaxPageSize = defaultMaxPageSize
	}

	if c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("default_page_size %d exceeds max_page_size %d", c.DefaultPageSize, c.MaxPageSize)
	}

	if c.ActiveWindowDays <= 0 {
		c.ActiveWindowDays = defaultActiveWindowDay
	}

	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	}

	return nil
}

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

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "lowercases", raw: "LAPTOP-J1X9", expected: "laptop-j1x9"},
		{name: "trims surrounding whitespace", raw: "  laptop-j1x9  ", expected: "laptop-j1x9"},
		{name: "collapses internal run to one hyphen", raw: "finance  laptop \t 01", expected: "finance-laptop-01"},
		{name: "mixed case and padding", raw: " Finance Laptop 01 ", expected: "finance-laptop-01"},
		{name: "already canonical", raw: "finance-laptop-01", expected: "finance-laptop-01"},
		{name: "empty", raw: "", expected: ""},
		{name: "whitespace only", raw: " \t\n ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, Normalize(tt.raw))
		})
	}
}

func TestNormalizeVariantsCollide(t *testing.T) {
	t.Parallel()

	// Cosmetic variants of one hostname must all normalize to the same key.
	variants := []string{"Sales-PC-7", "sales-pc-7", "  SALES-PC-7\t"}

	canonical := Normalize(variants[0])
	for _, v := range variants[1:] {
		assert.Equal(t, canonical, Normalize(v))
	}
}

func TestNormalizeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      any
		expected string
	}{
		{name: "nil", raw: nil, expected: ""},
		{name: "string", raw: "HOST 01", expected: "host-01"},
		{name: "numeric row value", raw: 42, expected: "42"},
		{name: "bool row value", raw: true, expected: "true"},
		{name: "empty string", raw: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, NormalizeValue(tt.raw))
		})
	}
}

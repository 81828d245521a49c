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

package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeLayouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		expected time.Time
	}{
		{
			name:     "rfc3339",
			raw:      "2025-06-01T10:30:00Z",
			expected: time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "rfc3339 nano",
			raw:      "2025-06-01T10:30:00.123456789Z",
			expected: time.Date(2025, 6, 1, 10, 30, 0, 123456789, time.UTC),
		},
		{
			name:     "datetime no zone",
			raw:      "2025-06-01T10:30:00",
			expected: time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "datetime with space",
			raw:      "2025-06-01 10:30:00",
			expected: time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "date only",
			raw:      "2025-06-01",
			expected: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "us short date",
			raw:      "6/1/2025",
			expected: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "us short date with time",
			raw:      "6/1/2025 10:30",
			expected: time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "padded",
			raw:      "  2025-06-01  ",
			expected: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ParseTime(tt.raw)
			require.NotNil(t, got)
			assert.True(t, tt.expected.Equal(*got), "got %v, want %v", got, tt.expected)
		})
	}
}

func TestParseTimeUnparseable(t *testing.T) {
	t.Parallel()

	for _, raw := range []any{"", "   ", "not-a-date", "13/45/2025", 12345, nil, map[string]any{}} {
		assert.Nil(t, ParseTime(raw), "raw=%v", raw)
	}
}

func TestParseTimePassthrough(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	got := ParseTime(base)
	require.NotNil(t, got)
	assert.True(t, base.Equal(*got))

	got = ParseTime(&base)
	require.NotNil(t, got)
	assert.True(t, base.Equal(*got))

	assert.Nil(t, ParseTime(time.Time{}))
	assert.Nil(t, ParseTime((*time.Time)(nil)))
}

func TestParseBoolTriForm(t *testing.T) {
	t.Parallel()

	truePtr := func() *bool { v := true; return &v }
	falsePtr := func() *bool { v := false; return &v }

	tests := []struct {
		name     string
		raw      any
		expected *bool
	}{
		{name: "native true", raw: true, expected: truePtr()},
		{name: "native false", raw: false, expected: falsePtr()},
		{name: "lower true", raw: "true", expected: truePtr()},
		{name: "title True", raw: "True", expected: truePtr()},
		{name: "upper FALSE", raw: "FALSE", expected: falsePtr()},
		{name: "title False", raw: "False", expected: falsePtr()},
		{name: "yes", raw: "yes", expected: truePtr()},
		{name: "Yes", raw: "Yes", expected: truePtr()},
		{name: "no", raw: "no", expected: falsePtr()},
		{name: "padded", raw: " true ", expected: truePtr()},
		{name: "unknown string", raw: "enabled", expected: nil},
		{name: "empty string", raw: "", expected: nil},
		{name: "nil", raw: nil, expected: nil},
		{name: "numeric", raw: 1, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ParseBool(tt.raw)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

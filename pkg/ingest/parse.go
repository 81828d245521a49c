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
	"strings"
	"time"
)

// timeLayouts are the formats platform exports have been observed to
// emit, most specific first.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/2006",
}

// ParseTime parses a date-like row value into a timestamp. Empty and
// unparseable values both map to nil: an unknown date is data, not an
// error, and downstream treats nil as "unknown" rather than epoch or
// now.
func ParseTime(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return nil
		}

		out := t

		return &out
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil
		}

		out := *t

		return &out
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}

		for _, layout := range timeLayouts {
			parsed, err := time.Parse(layout, s)
			if err == nil {
				return &parsed
			}
		}

		return nil
	default:
		return nil
	}
}

// ParseBool parses a tri-form boolean: native bool, or the strings
// "true"/"false"/"yes"/"no" in any letter case. Anything else is nil,
// meaning the platform did not say.
func ParseBool(v any) *bool {
	switch t := v.(type) {
	case bool:
		out := t

		return &out
	case string:
		s := strings.TrimSpace(t)

		switch {
		case strings.EqualFold(s, "true"), strings.EqualFold(s, "yes"):
			return boolPtr(true)
		case strings.EqualFold(s, "false"), strings.EqualFold(s, "no"):
			return boolPtr(false)
		}
	}

	return nil
}

func boolPtr(v bool) *bool {
	out := v

	return &out
}

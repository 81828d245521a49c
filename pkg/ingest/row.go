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

// Package ingest adapts raw per-platform export rows into typed facts
// for the merge engine. Adapters are total: malformed data produces a
// less-populated fact or a dropped row, never an error.
package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is one raw device record from a platform export, decoded from
// JSON or CSV. Exports are inconsistent about shape: fields go
// missing, arrive as non-string scalars, or hold padded strings. The
// accessors absorb that instead of erroring.
type Row map[string]any

// value returns the first present, non-nil field among keys.
func (r Row) value(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}

	return nil, false
}

// str returns the trimmed string form of the first field among keys
// whose value stringifies to something non-empty, or "".
func (r Row) str(keys ...string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}

		if s := stringify(v); s != "" {
			return s
		}
	}

	return ""
}

// timePtr parses the first present field among keys as a timestamp.
func (r Row) timePtr(keys ...string) *time.Time {
	v, ok := r.value(keys...)
	if !ok {
		return nil
	}

	return ParseTime(v)
}

// boolPtr parses the first present field among keys as a tri-form
// boolean.
func (r Row) boolPtr(keys ...string) *bool {
	v, ok := r.value(keys...)
	if !ok {
		return nil
	}

	return ParseBool(v)
}

// truthy reports whether the field holds an affirmative flag. Endpoint
// exports flip between native booleans and "Yes"/"true" strings.
func (r Row) truthy(keys ...string) bool {
	v, ok := r.value(keys...)
	if !ok {
		return false
	}

	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.TrimSpace(t)

		return strings.EqualFold(s, "yes") || strings.EqualFold(s, "true")
	default:
		return false
	}
}

// stringify renders a raw row value for string fields. JSON numbers
// decode as float64; formatting them with -1 precision keeps serial
// numbers free of exponent notation.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// optional promotes a non-empty detail string to a nullable fact field.
func optional(s string) *string {
	if s == "" {
		return nil
	}

	out := s

	return &out
}

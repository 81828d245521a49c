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

// Package identity canonicalizes device hostnames so that rows reported
// by different platforms under cosmetic variants of the same name
// ("Finance-01", " finance 01 ") resolve to one inventory entry.
package identity

import (
	"fmt"
	"strings"
)

// Normalize returns the canonical form of a hostname: lowercased,
// trimmed, every internal whitespace run collapsed to a single hyphen.
// Two rows describe the same device iff their normalized hostnames are
// byte-equal. An empty result means the row carries no usable identity.
func Normalize(raw string) string {
	fields := strings.Fields(strings.ToLower(raw))
	if len(fields) == 0 {
		return ""
	}

	return strings.Join(fields, "-")
}

// NormalizeValue is the tolerant variant for raw row values, which may
// be nil or a non-string scalar depending on the upstream export.
func NormalizeValue(raw any) string {
	if raw == nil {
		return ""
	}

	if s, ok := raw.(string); ok {
		return Normalize(s)
	}

	return Normalize(fmt.Sprint(raw))
}

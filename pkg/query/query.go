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

// Package query provides the pure listing helpers behind the devices
// API and CLI: free-text filtering and page slicing. Neither function
// mutates its input.
package query

import (
	"strings"

	"github.com/carverauto/fleetradar/pkg/models"
)

// Filter returns the devices matching a free-text query: a
// case-insensitive substring match against hostname, user, or
// department, OR-combined. An empty query returns the input unchanged
// in original order.
func Filter(devices []*models.Device, q string) []*models.Device {
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return devices
	}

	out := make([]*models.Device, 0, len(devices))

	for _, device := range devices {
		if matches(device, needle) {
			out = append(out, device)
		}
	}

	return out
}

func matches(device *models.Device, needle string) bool {
	if strings.Contains(strings.ToLower(device.Hostname), needle) {
		return true
	}

	if device.User != nil && strings.Contains(strings.ToLower(*device.User), needle) {
		return true
	}

	if device.Department != nil && strings.Contains(strings.ToLower(*device.Department), needle) {
		return true
	}

	return false
}

// Paginate slices one 1-based page out of devices. Non-positive sizes
// or pages and out-of-range pages return an empty slice; clamping is
// the caller's job.
func Paginate(devices []*models.Device, pageSize, page int) []*models.Device {
	if pageSize <= 0 || page <= 0 {
		return []*models.Device{}
	}

	start := (page - 1) * pageSize
	if start >= len(devices) {
		return []*models.Device{}
	}

	end := start + pageSize
	if end > len(devices) {
		end = len(devices)
	}

	return devices[start:end]
}

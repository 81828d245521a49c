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

package api

import (
	"github.com/carverauto/fleetradar/pkg/models"
)

// Pagination describes the slice of a collection a response carries.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// DevicesResponse is one page of the merged device inventory.
type DevicesResponse struct {
	Devices    []*models.Device `json:"devices"`
	Pagination Pagination       `json:"pagination"`
}

// StatusResponse reports service health for GET /api/status.
type StatusResponse struct {
	Status        string             `json:"status"`
	Version       string             `json:"version"`
	BuildID       string             `json:"build_id,omitempty"`
	Uptime        string             `json:"uptime"`
	UptimeSeconds int64              `json:"uptime_seconds"`
	TotalDevices  int                `json:"total_devices"`
	Snapshot      models.SummaryMeta `json:"snapshot"`
}

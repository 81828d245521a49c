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

// Package api pkg/core/api/interfaces.go
package api

import (
	"context"
	"time"

	"github.com/carverauto/fleetradar/pkg/core"
	"github.com/carverauto/fleetradar/pkg/ingest"
	"github.com/carverauto/fleetradar/pkg/models"
)

// Service represents the API server functionality.
type Service interface {
	Start(addr string) error
}

// CoreService is the slice of the inventory pipeline the API server
// depends on. *core.Server implements it; tests substitute hand-written
// fakes.
type CoreService interface {
	SetSourceRows(ctx context.Context, source models.Source, rows []ingest.Row) (*core.UploadResult, error)
	Devices() []*models.Device
	Device(hostname string) (*models.Device, bool)
	Summary() *models.FleetSummary
	Meta() models.SummaryMeta
	Uptime() time.Duration
	AddSnapshotListener(listener core.SnapshotListener)
}

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

// Package api pkg/core/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/fleetradar/pkg/aggregate"
	"github.com/carverauto/fleetradar/pkg/core"
	"github.com/carverauto/fleetradar/pkg/ingest"
	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/models"
)

var testBase = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestCoreServer(t *testing.T) *core.Server {
	t.Helper()

	clock := func() time.Time { return testBase }

	seq := 0

	return core.NewServer(logger.NewTestLogger(),
		core.WithClock(clock),
		core.WithAggregator(aggregate.NewAggregator(aggregate.WithClock(clock))),
		core.WithSnapshotIDs(func() string {
			seq++
			return fmt.Sprintf("snap-%d", seq)
		}),
	)
}

func newTestAPIServer(t *testing.T, coreServer *core.Server, options ...func(*APIServer)) *APIServer {
	t.Helper()

	all := append([]func(*APIServer){
		WithLogger(logger.NewTestLogger()),
		WithCoreService(coreServer),
	}, options...)

	return NewAPIServer(models.CORSConfig{AllowedOrigins: []string{"*"}}, all...)
}

func seedFleet(t *testing.T, coreServer *core.Server) {
	t.Helper()

	_, err := coreServer.SetSourceRows(context.Background(), models.SourceEDR, []ingest.Row{
		{"hostname": "ws-0001", "user": "alice", "platform": "Windows 11"},
		{"hostname": "ws-0002", "user": "bob", "detectionsDisabled": "true"},
		{"hostname": "mac-0003", "user": "carol", "platform": "macOS 14"},
	})
	require.NoError(t, err)

	_, err = coreServer.SetSourceRows(context.Background(), models.SourceAssetMgmt, []ingest.Row{
		{"name": "WS 0001", "department": "Finance", "assignedUser": "alice"},
		{"name": "ws-0002", "department": "Engineering"},
		{"name": "print-9000", "department": "Facilities"},
	})
	require.NoError(t, err)
}

func TestUploadSourceRowsJSON(t *testing.T) {
	t.Parallel()

	server := newTestAPIServer(t, newTestCoreServer(t))

	body := `[
		{"hostname": "ws-0001", "user": "alice"},
		{"hostname": "ws-0002"},
		{"hostname": "   "}
	]`

	req := httptest.NewRequest(http.MethodPost, "/api/sources/edr/rows", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)

	var result core.UploadResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))

	assert.Equal(t, models.SourceEDR, result.Source)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, 1, result.Dropped)
	assert.Equal(t, 2, result.TotalDevices)
	assert.Equal(t, "snap-2", result.SnapshotID)
}

func TestUploadSourceRowsCSV(t *testing.T) {
	t.Parallel()

	server := newTestAPIServer(t, newTestCoreServer(t))

	body := "hostname,user,detectionsDisabled\nws-0001,alice,false\nws-0002,bob,true\n"

	req := httptest.NewRequest(http.MethodPost, "/api/sources/edr/rows", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv; charset=utf-8")

	rr := httptest.NewRecorder()

	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)

	var result core.UploadResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))

	assert.Equal(t, 2, result.Rows)
	assert.Zero(t, result.Dropped)
	assert.Equal(t, 2, result.TotalDevices)
}

func TestUploadUnknownSource(t *testing.T) {
	t.Parallel()

	server := newTestAPIServer(t, newTestCoreServer(t))

	req := httptest.NewRequest(http.MethodPost, "/api/sources/crm/rows", strings.NewReader(`[]`))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)

	var errResponse models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResponse))

	assert.Equal(t, http.StatusNotFound, errResponse.Status)
	assert.Contains(t, errResponse.Message, "crm")
}

func TestUploadBodyTooLarge(t *testing.T) {
	t.Parallel()

	server := newTestAPIServer(t, newTestCoreServer(t), WithUploadLimit(64))

	body := fmt.Sprintf(`[{"hostname": %q}]`, strings.Repeat("x", 256))

	req := httptest.NewRequest(http.MethodPost, "/api/sources/edr/rows", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestUploadCSVTooLarge(t *testing.T) {
	t.Parallel()

	server := newTestAPIServer(t, newTestCoreServer(t), WithUploadLimit(32))

	body := "hostname,user\n" + strings.Repeat("ws-0001,alice\n", 32)

	req := httptest.NewRequest(http.MethodPost, "/api/sources/edr/rows", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")

	rr := httptest.NewRecorder()

	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestUploadMalformedBody(t *testing.T) {
	t.Parallel()

	server := newTestAPIServer(t, newTestCoreServer(t))

	req := httptest.NewRequest(http.MethodPost, "/api/sources/mdm/rows", strings.NewReader(`{"not": "an array"`))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetDevices(t *testing.T) {
	t.Parallel()

	coreServer := newTestCoreServer(t)
	seedFleet(t, coreServer)

	server := newTestAPIServer(t, coreServer)

	req := httptest.NewRequest(http.MethodGet, "/api/devices", http.NoBody)
	rr := httptest.NewRecorder()

	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response DevicesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	require.Len(t, response.Devices, 4)
	assert.Equal(t, "ws-0001", response.Devices[0].Hostname)

	assert.Equal(t, Pagination{Page: 1, PageSize: 50, TotalItems: 4, TotalPages: 1}, response.Pagination)
}

func TestGetDevicesFilter(t *testing.T) {
	t.Parallel()

	coreServer := newTestCoreServer(t)
	seedFleet(t, coreServer)

	server := newTestAPIServer(t, coreServer)

	req := httptest.NewRequest(http.MethodGet, "/api/devices?q=finance", http.NoBody)
	rr := httptest.NewRecorder()

	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response DevicesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	require.Len(t, response.Devices, 1)
	assert.Equal(t, "ws-0001", response.Devices[0].Hostname)
	assert.Equal(t, 1, response.Pagination.TotalItems)
}

func TestGetDevicesPagination(t *testing.T) {
	t.Parallel()

	coreServer := newTestCoreServer(t)
	seedFleet(t, coreServer)

	server := newTestAPIServer(t, coreServer, WithPageLimits(2, 3))

	cases := []struct {
		name       string
		target     string
		hostnames  []string
		pagination Pagination
	}{
		{
			name:       "default page size",
			target:     "/api/devices",
			hostnames:  []string{"ws-0001", "ws-0002"},
			pagination: Pagination{Page: 1, PageSize: 2, TotalItems: 4, TotalPages: 2},
		},
		{
			name:       "second page",
			target:     "/api/devices?page=2",
			hostnames:  []string{"mac-0003", "print-9000"},
			pagination: Pagination{Page: 2, PageSize: 2, TotalItems: 4, TotalPages: 2},
		},
		{
			name:       "page beyond range clamps to last",
			target:     "/api/devices?page=99",
			hostnames:  []string{"mac-0003", "print-9000"},
			pagination: Pagination{Page: 2, PageSize: 2, TotalItems: 4, TotalPages: 2},
		},
		{
			name:       "page size above cap clamps to cap",
			target:     "/api/devices?page_size=500",
			hostnames:  []string{"ws-0001", "ws-0002", "mac-0003"},
			pagination: Pagination{Page: 1, PageSize: 3, TotalItems: 4, TotalPages: 2},
		},
		{
			name:       "garbage parameters fall back to defaults",
			target:     "/api/devices?page=banana&page_size=-3",
			hostnames:  []string{"ws-0001", "ws-0002"},
			pagination: Pagination{Page: 1, PageSize: 2, TotalItems: 4, TotalPages: 2},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tc.target, http.NoBody)
			rr := httptest.NewRecorder()

			server.ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)

			var response DevicesResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

			got := make([]string, 0, len(response.Devices))
			for _, device := range response.Devices {
				got = append(got, device.Hostname)
			}

			assert.Equal(t, tc.hostnames, got)
			assert.Equal(t, tc.pagination, response.Pagination)
		})
	}
}

func TestGetDevicesEmptyInventory(t *testing.T) {
	t.Parallel()

	server := newTestAPIServer(t, newTestCoreServer(t))

	req := httptest.NewRequest(http.MethodGet, "/api/devices", http.NoBody)
	rr := httptest.NewRecorder()

	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response DevicesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	assert.Empty(t, response.Devices)
	assert.Equal(t, Pagination{Page: 1, PageSize: 50, TotalItems: 0, TotalPages: 1}, response.Pagination)
}

func TestGetDeviceNormalizesHostname(t *testing.T) {
	t.Parallel()

	coreServer := newTestCoreServer(t)
	seedFleet(t, coreServer)

	server := newTestAPIServer(t, coreServer)

	// "WS 0001" resolves to the same device as "ws-0001".
	req := httptest.NewRequest(http.MethodGet, "/api/devices/WS%200001", http.NoBody)
	rr := httptest.NewRecorder()

	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var device models.Device
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &device))

	assert.Equal(t, "ws-0001", device.Hostname)
	assert.Equal(t, []models.Source{models.SourceEDR, models.SourceAssetMgmt}, device.Sources)
}

func TestGetDeviceNotFound(t *testing.T) {
	t.Parallel()

	server := newTestAPIServer(t, newTestCoreServer(t))

	req := httptest.NewRequest(http.MethodGet, "/api/devices/ghost-host", http.NoBody)
	rr := httptest.NewRecorder()

	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)

	var errResponse models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResponse))
	assert.Equal(t, "Device not found", errResponse.Message)
}

func TestGetSummary(t *testing.T) {
	t.Parallel()

	coreServer := newTestCoreServer(t)
	seedFleet(t, coreServer)

	server := newTestAPIServer(t, coreServer)

	req := httptest.NewRequest(http.MethodGet, "/api/summary", http.NoBody)
	rr := httptest.NewRecorder()

	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var summary models.FleetSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))

	assert.Equal(t, 4, summary.TotalDevices)
	require.Len(t, summary.Coverage, 5)
	assert.Equal(t, models.SourceEDR, summary.Coverage[0].Source)
	assert.Equal(t, 3, summary.Coverage[0].Count)
}

func TestGetStatus(t *testing.T) {
	t.Parallel()

	coreServer := newTestCoreServer(t)
	seedFleet(t, coreServer)

	server := newTestAPIServer(t, coreServer)

	req := httptest.NewRequest(http.MethodGet, "/api/status", http.NoBody)
	rr := httptest.NewRecorder()

	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))

	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "dev", status.Version)
	assert.Equal(t, 4, status.TotalDevices)
	assert.Equal(t, "snap-3", status.Snapshot.SnapshotID)
	assert.Equal(t, testBase, status.Snapshot.ComputedAt)
}

func TestAPIKeyGuardsRoutes(t *testing.T) {
	t.Parallel()

	coreServer := newTestCoreServer(t)
	server := newTestAPIServer(t, coreServer, WithAPIKey("sekrit"))

	req := httptest.NewRequest(http.MethodGet, "/api/summary", http.NoBody)
	rr := httptest.NewRecorder()

	server.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/summary", http.NoBody)
	req.Header.Set("X-API-Key", "sekrit")

	rr = httptest.NewRecorder()

	server.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestUploadRejectsGet(t *testing.T) {
	t.Parallel()

	server := newTestAPIServer(t, newTestCoreServer(t))

	req := httptest.NewRequest(http.MethodGet, "/api/sources/edr/rows", http.NoBody)
	rr := httptest.NewRecorder()

	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestResponsesCarryRequestID(t *testing.T) {
	t.Parallel()

	server := newTestAPIServer(t, newTestCoreServer(t))

	req := httptest.NewRequest(http.MethodGet, "/api/summary", http.NoBody)
	rr := httptest.NewRecorder()

	server.ServeHTTP(rr, req)

	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

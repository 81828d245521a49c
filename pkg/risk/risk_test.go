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

package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carverauto/fleetradar/pkg/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func boolPtr(v bool) *bool { return &v }

func TestScoreScenarios(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	recent := timePtr(now.AddDate(0, 0, -5))
	ancient := timePtr(now.AddDate(0, 0, -120))

	tests := []struct {
		name     string
		device   *models.Device
		expected int
	}{
		{
			name: "fully healthy scores zero",
			device: &models.Device{
				Hostname: "ws-1",
				Sources:  []models.Source{models.SourceEDR, models.SourceDirectory, models.SourceMDM},
				LastSeen: recent,
				EDR:      &models.EDRDetail{},
				Directory: &models.DirectoryDetail{
					Compliant: boolPtr(true),
				},
				MDM: &models.MDMDetail{
					Compliant: boolPtr(true),
					Encrypted: boolPtr(true),
				},
			},
			expected: 0,
		},
		{
			name: "edr only with detections disabled",
			device: &models.Device{
				Hostname: "ws-100",
				Sources:  []models.Source{models.SourceEDR},
				EDR:      &models.EDRDetail{DetectionsDisabled: true},
			},
			expected: 25,
		},
		{
			name: "asset only never seen",
			device: &models.Device{
				Hostname: "printer-1",
				Sources:  []models.Source{models.SourceAssetMgmt},
				Asset:    &models.AssetDetail{Department: "Finance"},
			},
			expected: 30,
		},
		{
			name: "worst case without edr",
			device: &models.Device{
				Hostname: "rogue-1",
				Sources:  []models.Source{models.SourceDirectory, models.SourceMDM},
				LastSeen: ancient,
				Directory: &models.DirectoryDetail{
					Compliant: boolPtr(false),
				},
				MDM: &models.MDMDetail{
					Compliant: boolPtr(false),
					Encrypted: boolPtr(false),
				},
			},
			expected: 75,
		},
		{
			name: "stale adds ten",
			device: &models.Device{
				Hostname: "ws-2",
				Sources:  []models.Source{models.SourceEDR},
				LastSeen: ancient,
				EDR:      &models.EDRDetail{},
			},
			expected: 10,
		},
		{
			name: "unknown last seen is not stale",
			device: &models.Device{
				Hostname: "ws-3",
				Sources:  []models.Source{models.SourceEDR},
				EDR:      &models.EDRDetail{},
			},
			expected: 0,
		},
		{
			name: "unknown compliance is not non-compliant",
			device: &models.Device{
				Hostname:  "ws-4",
				Sources:   []models.Source{models.SourceEDR, models.SourceDirectory, models.SourceMDM},
				LastSeen:  recent,
				EDR:       &models.EDRDetail{},
				Directory: &models.DirectoryDetail{},
				MDM:       &models.MDMDetail{},
			},
			expected: 0,
		},
		{
			name: "single management plane flag is enough",
			device: &models.Device{
				Hostname: "ws-5",
				Sources:  []models.Source{models.SourceEDR, models.SourceDirectory, models.SourceMDM},
				LastSeen: recent,
				EDR:      &models.EDRDetail{},
				Directory: &models.DirectoryDetail{
					Compliant: boolPtr(true),
				},
				MDM: &models.MDMDetail{
					Compliant: boolPtr(false),
					Encrypted: boolPtr(true),
				},
			},
			expected: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, Score(tt.device, now))
		})
	}
}

func TestScoreStaleBoundary(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	onBoundary := &models.Device{
		Hostname: "ws-1",
		Sources:  []models.Source{models.SourceEDR},
		LastSeen: timePtr(now.Add(-90 * 24 * time.Hour)),
		EDR:      &models.EDRDetail{},
	}
	assert.Zero(t, Score(onBoundary, now), "exactly 90 days is not yet stale")

	pastBoundary := &models.Device{
		Hostname: "ws-2",
		Sources:  []models.Source{models.SourceEDR},
		LastSeen: timePtr(now.Add(-90*24*time.Hour - time.Second)),
		EDR:      &models.EDRDetail{},
	}
	assert.Equal(t, 10, Score(pastBoundary, now))
}

func TestBucketBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score    int
		expected models.RiskBucket
	}{
		{score: 0, expected: models.RiskLow},
		{score: 14, expected: models.RiskLow},
		{score: 15, expected: models.RiskMedium},
		{score: 29, expected: models.RiskMedium},
		{score: 30, expected: models.RiskElevated},
		{score: 49, expected: models.RiskElevated},
		{score: 50, expected: models.RiskHigh},
		{score: 75, expected: models.RiskHigh},
		{score: 100, expected: models.RiskHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Bucket(tt.score), "score %d", tt.score)
	}
}

func TestStalePartition(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	known := timePtr(now.AddDate(0, 0, -40))
	assert.True(t, Stale(known, now, 30))
	assert.False(t, Active(known, now, 30))
	assert.False(t, Stale(known, now, 45))
	assert.True(t, Active(known, now, 45))

	// Unknown activity sits in neither camp at any threshold.
	for _, days := range []int{30, 45, 90} {
		assert.False(t, Stale(nil, now, days))
		assert.False(t, Active(nil, now, days))
	}
}

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

// Package risk scores a device's security posture. Scoring is a pure
// function of the device's merged fields at one instant; every
// pipeline run recomputes from scratch.
package risk

import (
	"time"

	"github.com/carverauto/fleetradar/pkg/models"
)

const (
	pointsNoEDR              = 30
	pointsDetectionsDisabled = 25
	pointsNonCompliant       = 20
	pointsUnencrypted        = 15
	pointsStale              = 10

	// staleRiskDays is the activity horizon beyond which a known
	// lastSeen adds risk.
	staleRiskDays = 90
)

// Score returns the additive risk score for a device. Penalties stack
// independently; the natural range is a subset of [0,100] so no
// clamping is applied. A device with unknown lastSeen never takes the
// staleness penalty: absence of data is not evidence of staleness.
func Score(d *models.Device, now time.Time) int {
	score := 0

	if !d.HasSource(models.SourceEDR) {
		score += pointsNoEDR
	}

	if d.EDR != nil && d.EDR.DetectionsDisabled {
		score += pointsDetectionsDisabled
	}

	if NonCompliant(d) {
		score += pointsNonCompliant
	}

	if Unencrypted(d) {
		score += pointsUnencrypted
	}

	if Stale(d.LastSeen, now, staleRiskDays) {
		score += pointsStale
	}

	return score
}

// Bucket maps a score to its presentation band: [0,15) low,
// [15,30) medium, [30,50) elevated, [50,100] high.
func Bucket(score int) models.RiskBucket {
	switch {
	case score >= 50:
		return models.RiskHigh
	case score >= 30:
		return models.RiskElevated
	case score >= 15:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// NonCompliant reports whether either management plane explicitly
// flags the device non-compliant. Unknown compliance (nil) never
// counts.
func NonCompliant(d *models.Device) bool {
	if d.Directory != nil && d.Directory.Compliant != nil && !*d.Directory.Compliant {
		return true
	}

	if d.MDM != nil && d.MDM.Compliant != nil && !*d.MDM.Compliant {
		return true
	}

	return false
}

// Unencrypted reports whether MDM explicitly flags the device's disk
// as unencrypted.
func Unencrypted(d *models.Device) bool {
	return d.MDM != nil && d.MDM.Encrypted != nil && !*d.MDM.Encrypted
}

// Stale reports whether a known activity timestamp is more than
// thresholdDays before now. A nil timestamp is unknown, which is
// neither stale nor active.
func Stale(lastSeen *time.Time, now time.Time, thresholdDays int) bool {
	if lastSeen == nil {
		return false
	}

	return now.Sub(*lastSeen) > time.Duration(thresholdDays)*24*time.Hour
}

// Active reports whether a known activity timestamp falls within
// thresholdDays of now. Nil timestamps are neither active nor stale.
func Active(lastSeen *time.Time, now time.Time, thresholdDays int) bool {
	if lastSeen == nil {
		return false
	}

	return !Stale(lastSeen, now, thresholdDays)
}

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

// Package aggregate derives fleet-wide posture summaries from a scored
// device collection. Every figure is recomputed from scratch per run;
// nothing is adjusted incrementally.
package aggregate

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/models"
	"github.com/carverauto/fleetradar/pkg/risk"
)

const (
	// defaultActiveWindowDays is the look-back for per-OS active counts.
	defaultActiveWindowDays = 30

	// topManufacturers caps the manufacturer frequency table.
	topManufacturers = 8

	// UnassignedDepartment groups devices that AssetMgmt never claimed.
	UnassignedDepartment = "Unassigned"
)

// stalenessThresholds are the day horizons the summary reports.
var stalenessThresholds = []int{30, 45, 90}

// Option customises the behaviour of the Aggregator.
type Option func(*Aggregator)

// Aggregator computes fleet summaries. It holds no state between runs.
type Aggregator struct {
	logger           logger.Logger
	now              func() time.Time
	activeWindowDays int
}

// NewAggregator constructs an Aggregator with the default 30-day
// active window and wall-clock time.
func NewAggregator(opts ...Option) *Aggregator {
	agg := &Aggregator{
		now:              time.Now,
		activeWindowDays: defaultActiveWindowDays,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(agg)
		}
	}

	return agg
}

// WithLogger attaches a logger for the per-run debug line.
func WithLogger(log logger.Logger) Option {
	return func(a *Aggregator) {
		if log != nil {
			a.logger = log
		}
	}
}

// WithClock injects a deterministic clock (used for tests).
func WithClock(clock func() time.Time) Option {
	return func(a *Aggregator) {
		if clock != nil {
			a.now = clock
		}
	}
}

// WithActiveWindow overrides the look-back period for per-OS active
// counts.
func WithActiveWindow(days int) Option {
	return func(a *Aggregator) {
		if days > 0 {
			a.activeWindowDays = days
		}
	}
}

// Summarize computes the fleet summary for a scored device collection.
// Slice outputs are deterministic: coverage follows the fixed source
// order, ranked tables sort descending by count with ties keeping
// first-encountered order.
func (a *Aggregator) Summarize(devices []*models.Device) *models.FleetSummary {
	now := a.now().UTC()

	summary := &models.FleetSummary{
		GeneratedAt:  now,
		TotalDevices: len(devices),
	}

	coverage := make(map[models.Source]int, 5)

	staleness := make([]models.StalenessBucket, len(stalenessThresholds))
	for i, days := range stalenessThresholds {
		staleness[i] = models.StalenessBucket{ThresholdDays: days}
	}

	osStats := make(map[string]*models.OSClassStats)
	osOrder := make([]string, 0, 8)

	departments := make(map[string]*models.DepartmentStats)
	departmentOrder := make([]string, 0, 16)

	manufacturerCounts := make(map[string]int)
	manufacturerOrder := make([]string, 0, 16)

	for _, device := range devices {
		for _, source := range device.Sources {
			coverage[source]++
		}

		if unprotected(device) {
			summary.Unprotected++
		}

		if risk.NonCompliant(device) {
			summary.NonCompliant++
		}

		if risk.Unencrypted(device) {
			summary.Unencrypted++
		}

		if detectionsDisabled(device) {
			summary.DetectionsDisabled++
		}

		if unassigned(device) {
			summary.Unassigned++
		}

		if disabled(device) {
			summary.Disabled++
		}

		switch risk.Bucket(device.RiskScore) {
		case models.RiskLow:
			summary.RiskBuckets.Low++
		case models.RiskMedium:
			summary.RiskBuckets.Medium++
		case models.RiskElevated:
			summary.RiskBuckets.Elevated++
		case models.RiskHigh:
			summary.RiskBuckets.High++
		}

		for i, days := range stalenessThresholds {
			switch {
			case risk.Stale(device.LastSeen, now, days):
				staleness[i].Stale++
			case risk.Active(device.LastSeen, now, days):
				staleness[i].Active++
			default:
				staleness[i].Unknown++
			}
		}

		class := ClassifyOS(device)

		osStat := osStats[class]
		if osStat == nil {
			osStat = &models.OSClassStats{Class: class}
			osStats[class] = osStat
			osOrder = append(osOrder, class)
		}

		osStat.Count++

		if risk.Active(device.LastSeen, now, a.activeWindowDays) {
			osStat.Active++
		}

		a.accumulateDepartment(departments, &departmentOrder, device, now)

		if device.Manufacturer != nil && *device.Manufacturer != "" {
			name := *device.Manufacturer
			if _, seen := manufacturerCounts[name]; !seen {
				manufacturerOrder = append(manufacturerOrder, name)
			}

			manufacturerCounts[name]++
		}
	}

	summary.Coverage = buildCoverage(coverage)
	summary.Staleness = staleness
	summary.OSDistribution = buildOSDistribution(osStats, osOrder)
	summary.Departments = buildDepartmentStats(departments, departmentOrder)
	summary.Manufacturers = buildManufacturerTable(manufacturerCounts, manufacturerOrder)

	a.logSummary(summary)

	return summary
}

// accumulateDepartment folds one device into its department group.
// Devices AssetMgmt never claimed group under "Unassigned".
func (a *Aggregator) accumulateDepartment(
	departments map[string]*models.DepartmentStats,
	order *[]string,
	device *models.Device,
	now time.Time,
) {
	name := UnassignedDepartment
	if device.Department != nil && *device.Department != "" {
		name = *device.Department
	}

	stats := departments[name]
	if stats == nil {
		stats = &models.DepartmentStats{Department: name}
		departments[name] = stats
		*order = append(*order, name)
	}

	stats.Total++

	if device.HasSource(models.SourceEDR) {
		stats.Protected++
	}

	if compliant(device) {
		stats.Compliant++
	}

	if encrypted(device) {
		stats.Encrypted++
	}

	if risk.Stale(device.LastSeen, now, stalenessThresholds[0]) {
		stats.Stale++
	}

	if risk.Bucket(device.RiskScore) == models.RiskHigh {
		stats.HighRisk++
	}
}

// buildCoverage emits per-source counts in fixed source order. Sources
// with zero devices still appear, so a missing feed reads as zero
// rather than vanishing.
func buildCoverage(coverage map[models.Source]int) []models.SourceCoverage {
	out := make([]models.SourceCoverage, 0, 5)
	for _, source := range models.SourceOrder() {
		out = append(out, models.SourceCoverage{Source: source, Count: coverage[source]})
	}

	return out
}

func buildOSDistribution(osStats map[string]*models.OSClassStats, order []string) []models.OSClassStats {
	if len(order) == 0 {
		return nil
	}

	out := make([]models.OSClassStats, 0, len(order))
	for _, class := range order {
		out = append(out, *osStats[class])
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})

	return out
}

func buildDepartmentStats(departments map[string]*models.DepartmentStats, order []string) []models.DepartmentStats {
	if len(order) == 0 {
		return nil
	}

	out := make([]models.DepartmentStats, 0, len(order))

	for _, name := range order {
		stats := *departments[name]
		stats.ProtectedPct = roundedPct(stats.Protected, stats.Total)
		stats.CompliantPct = roundedPct(stats.Compliant, stats.Total)
		stats.EncryptedPct = roundedPct(stats.Encrypted, stats.Total)
		out = append(out, stats)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})

	return out
}

func buildManufacturerTable(counts map[string]int, order []string) []models.ManufacturerCount {
	if len(order) == 0 {
		return nil
	}

	out := make([]models.ManufacturerCount, 0, len(order))
	for _, name := range order {
		out = append(out, models.ManufacturerCount{Manufacturer: name, Count: counts[name]})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})

	if len(out) > topManufacturers {
		out = out[:topManufacturers]
	}

	return out
}

// ClassifyOS derives a device's OS label from the first non-empty
// platform string in authority order: EDR, then Directory, then the
// on-premises directory. Keyword matching is case-insensitive.
func ClassifyOS(d *models.Device) string {
	var raw string

	switch {
	case d.EDR != nil && d.EDR.Platform != "":
		raw = d.EDR.Platform
	case d.Directory != nil && d.Directory.OS != "":
		raw = d.Directory.OS
	case d.OnPrem != nil && d.OnPrem.OS != "":
		raw = d.OnPrem.OS
	}

	s := strings.ToLower(raw)

	switch {
	case strings.Contains(s, "windows"):
		return "Windows"
	case strings.Contains(s, "mac"), strings.Contains(s, "darwin"):
		return "macOS"
	case strings.Contains(s, "ios"), strings.Contains(s, "iphone"), strings.Contains(s, "ipad"):
		return "iOS"
	case strings.Contains(s, "android"):
		return "Android"
	default:
		return "Unknown"
	}
}

// unprotected: visible to a management plane but missing the endpoint
// agent.
func unprotected(d *models.Device) bool {
	if d.HasSource(models.SourceEDR) {
		return false
	}

	return d.HasSource(models.SourceDirectory) || d.HasSource(models.SourceMDM)
}

func detectionsDisabled(d *models.Device) bool {
	return d.EDR != nil && d.EDR.DetectionsDisabled
}

func unassigned(d *models.Device) bool {
	return d.User == nil || strings.TrimSpace(*d.User) == ""
}

// disabled: a directory explicitly disabled the device's account.
// Unknown enablement never counts.
func disabled(d *models.Device) bool {
	if d.Directory != nil && d.Directory.Enabled != nil && !*d.Directory.Enabled {
		return true
	}

	if d.OnPrem != nil && d.OnPrem.Enabled != nil && !*d.OnPrem.Enabled {
		return true
	}

	return false
}

// compliant: at least one management plane reported the device and
// neither flagged it non-compliant.
func compliant(d *models.Device) bool {
	if d.Directory == nil && d.MDM == nil {
		return false
	}

	return !risk.NonCompliant(d)
}

func encrypted(d *models.Device) bool {
	return d.MDM != nil && d.MDM.Encrypted != nil && *d.MDM.Encrypted
}

func roundedPct(part, total int) int {
	if total == 0 {
		return 0
	}

	return int(math.Round(100 * float64(part) / float64(total)))
}

func (a *Aggregator) logSummary(summary *models.FleetSummary) {
	if a.logger == nil {
		return
	}

	a.logger.Debug().
		Int("total_devices", summary.TotalDevices).
		Int("unprotected", summary.Unprotected).
		Int("non_compliant", summary.NonCompliant).
		Int("unencrypted", summary.Unencrypted).
		Int("detections_disabled", summary.DetectionsDisabled).
		Int("high_risk", summary.RiskBuckets.High).
		Int("departments", len(summary.Departments)).
		Msg("Fleet summary computed")
}

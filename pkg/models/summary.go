package models

import "time"

// RiskBucket names a presentation band of the risk score range.
type RiskBucket string

const (
	RiskLow      RiskBucket = "low"
	RiskMedium   RiskBucket = "medium"
	RiskElevated RiskBucket = "elevated"
	RiskHigh     RiskBucket = "high"
)

// SourceCoverage counts devices reported by one platform.
type SourceCoverage struct {
	Source Source `json:"source"`
	Count  int    `json:"count"`
}

// RiskBucketCounts tallies devices per risk bucket.
type RiskBucketCounts struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	Elevated int `json:"elevated"`
	High     int `json:"high"`
}

// StalenessBucket partitions devices against one day threshold. Devices
// with no activity timestamp land in Unknown, never Active or Stale.
type StalenessBucket struct {
	ThresholdDays int `json:"threshold_days"`
	Active        int `json:"active"`
	Stale         int `json:"stale"`
	Unknown       int `json:"unknown"`
}

// DepartmentStats summarises one department group. Percentage rates are
// rounded to the nearest integer.
type DepartmentStats struct {
	Department   string `json:"department"`
	Total        int    `json:"total"`
	Protected    int    `json:"protected"`
	Compliant    int    `json:"compliant"`
	Encrypted    int    `json:"encrypted"`
	Stale        int    `json:"stale"`
	HighRisk     int    `json:"high_risk"`
	ProtectedPct int    `json:"protected_pct"`
	CompliantPct int    `json:"compliant_pct"`
	EncryptedPct int    `json:"encrypted_pct"`
}

// OSClassStats counts devices per classified operating system, with the
// subset active inside the aggregator's active window.
type OSClassStats struct {
	Class  string `json:"class"`
	Count  int    `json:"count"`
	Active int    `json:"active"`
}

// ManufacturerCount is one row of the manufacturer frequency table.
type ManufacturerCount struct {
	Manufacturer string `json:"manufacturer"`
	Count        int    `json:"count"`
}

// FleetSummary is the aggregate view recomputed on every pipeline run.
type FleetSummary struct {
	GeneratedAt        time.Time           `json:"generated_at"`
	TotalDevices       int                 `json:"total_devices"`
	Coverage           []SourceCoverage    `json:"coverage"`
	Unprotected        int                 `json:"unprotected"`
	NonCompliant       int                 `json:"non_compliant"`
	Unencrypted        int                 `json:"unencrypted"`
	DetectionsDisabled int                 `json:"detections_disabled"`
	Unassigned         int                 `json:"unassigned"`
	Disabled           int                 `json:"disabled"`
	RiskBuckets        RiskBucketCounts    `json:"risk_buckets"`
	Staleness          []StalenessBucket   `json:"staleness"`
	OSDistribution     []OSClassStats      `json:"os_distribution"`
	Departments        []DepartmentStats   `json:"departments"`
	Manufacturers      []ManufacturerCount `json:"manufacturers"`
}

// SummaryMeta records bookkeeping for the latest snapshot.
type SummaryMeta struct {
	SnapshotID  string         `json:"snapshot_id"`
	ComputedAt  time.Time      `json:"computed_at"`
	DurationMS  int64          `json:"duration_ms"`
	SourceRows  map[Source]int `json:"source_rows,omitempty"`
	DroppedRows map[Source]int `json:"dropped_rows,omitempty"`
}

// InventorySnapshot is the immutable result of one pipeline run: the
// merged, scored device collection in stable order plus its summary.
type InventorySnapshot struct {
	Devices []*Device     `json:"devices"`
	Summary *FleetSummary `json:"summary"`
	Meta    SummaryMeta   `json:"meta"`
}

// Clone returns a defensive copy; readers of a published summary must
// not be able to reach engine state.
func (s *FleetSummary) Clone() *FleetSummary {
	if s == nil {
		return nil
	}

	clone := *s
	clone.Coverage = append([]SourceCoverage(nil), s.Coverage...)
	clone.Staleness = append([]StalenessBucket(nil), s.Staleness...)
	clone.OSDistribution = append([]OSClassStats(nil), s.OSDistribution...)
	clone.Departments = append([]DepartmentStats(nil), s.Departments...)
	clone.Manufacturers = append([]ManufacturerCount(nil), s.Manufacturers...)

	return &clone
}

// Clone deep-copies the per-source count maps.
func (m SummaryMeta) Clone() SummaryMeta {
	clone := m

	if m.SourceRows != nil {
		clone.SourceRows = make(map[Source]int, len(m.SourceRows))
		for k, v := range m.SourceRows {
			clone.SourceRows[k] = v
		}
	}

	if m.DroppedRows != nil {
		clone.DroppedRows = make(map[Source]int, len(m.DroppedRows))
		for k, v := range m.DroppedRows {
			clone.DroppedRows[k] = v
		}
	}

	return clone
}

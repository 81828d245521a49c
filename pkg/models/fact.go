package models

import "time"

// Fact is one adapted source row: the canonical identity it claims, the
// platform's typed detail record, and the base-field candidates the
// merge engine may promote onto the unified device. Exactly one detail
// pointer is set, matching Source.
type Fact struct {
	Source   Source
	Hostname string

	LastSeen     *time.Time
	User         *string
	SerialNumber *string
	Manufacturer *string
	Model        *string
	Department   *string
	Location     *string

	EDR       *EDRDetail
	Directory *DirectoryDetail
	MDM       *MDMDetail
	Asset     *AssetDetail
	OnPrem    *OnPremDetail
}

package models

import "strings"

// Source identifies one of the asset/security platforms that report
// device rows into the inventory.
type Source string

const (
	// SourceEDR is the endpoint-protection agent.
	SourceEDR Source = "edr"
	// SourceDirectory is the cloud identity directory.
	SourceDirectory Source = "directory"
	// SourceMDM is the mobile-device-management service.
	SourceMDM Source = "mdm"
	// SourceAssetMgmt is the IT asset/ticketing system.
	SourceAssetMgmt Source = "assetmgmt"
	// SourceOnPrem is the on-premises directory service.
	SourceOnPrem Source = "onprem"
)

// SourceOrder returns the fixed order in which source rows are folded
// into the inventory. Field precedence depends on this order.
func SourceOrder() []Source {
	return []Source{SourceEDR, SourceDirectory, SourceMDM, SourceAssetMgmt, SourceOnPrem}
}

// ParseSource maps an external source tag (API path segment, CLI flag)
// to its Source. The second return is false for unknown tags.
func ParseSource(raw string) (Source, bool) {
	switch s := Source(strings.ToLower(strings.TrimSpace(raw))); s {
	case SourceEDR, SourceDirectory, SourceMDM, SourceAssetMgmt, SourceOnPrem:
		return s, true
	default:
		return "", false
	}
}

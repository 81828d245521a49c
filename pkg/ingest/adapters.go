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

package ingest

import (
	"github.com/carverauto/fleetradar/pkg/identity"
	"github.com/carverauto/fleetradar/pkg/models"
)

// AdaptFunc maps one raw row to a typed fact. ok is false when the
// row's identity field normalizes to empty; such rows are dropped
// silently and callers count the drop for logging only.
type AdaptFunc func(Row) (*models.Fact, bool)

// Adapt runs the platform's adapter for one row. The second return is
// false for rows without a usable identity. Unknown sources never
// reach this point: the API layer validates tags first, and the merge
// fold only visits the five known platforms.
func Adapt(source models.Source, row Row) (*models.Fact, bool) {
	switch source {
	case models.SourceEDR:
		return AdaptEDR(row)
	case models.SourceDirectory:
		return AdaptDirectory(row)
	case models.SourceMDM:
		return AdaptMDM(row)
	case models.SourceAssetMgmt:
		return AdaptAsset(row)
	case models.SourceOnPrem:
		return AdaptOnPrem(row)
	default:
		return nil, false
	}
}

// AdaptEDR maps an endpoint-protection agent row. The export has two
// header spellings for the hostname in the wild; both are accepted.
func AdaptEDR(row Row) (*models.Fact, bool) {
	hostname := identity.Normalize(row.str("hostname", "Hostname"))
	if hostname == "" {
		return nil, false
	}

	detail := &models.EDRDetail{
		Status:             row.str("status"),
		DetectionsDisabled: row.truthy("detectionsDisabled"),
		LastSeen:           row.timePtr("lastSeen"),
		User:               row.str("user"),
		SerialNumber:       row.str("serialNumber"),
		Manufacturer:       row.str("manufacturer"),
		Model:              row.str("model"),
		Platform:           row.str("platform"),
		AgentVersion:       row.str("agentVersion"),
	}

	return &models.Fact{
		Source:       models.SourceEDR,
		Hostname:     hostname,
		LastSeen:     detail.LastSeen,
		User:         optional(detail.User),
		SerialNumber: optional(detail.SerialNumber),
		Manufacturer: optional(detail.Manufacturer),
		Model:        optional(detail.Model),
		EDR:          detail,
	}, true
}

// AdaptDirectory maps a cloud identity directory row.
func AdaptDirectory(row Row) (*models.Fact, bool) {
	hostname := identity.Normalize(row.str("displayName"))
	if hostname == "" {
		return nil, false
	}

	detail := &models.DirectoryDetail{
		Enabled:      row.boolPtr("accountEnabled"),
		Compliant:    row.boolPtr("isCompliant"),
		LastSignIn:   row.timePtr("lastSignIn"),
		OS:           row.str("operatingSystem"),
		User:         row.str("user"),
		Manufacturer: row.str("manufacturer"),
		Model:        row.str("model"),
		TrustType:    row.str("trustType"),
	}

	return &models.Fact{
		Source:       models.SourceDirectory,
		Hostname:     hostname,
		LastSeen:     detail.LastSignIn,
		User:         optional(detail.User),
		Manufacturer: optional(detail.Manufacturer),
		Model:        optional(detail.Model),
		Directory:    detail,
	}, true
}

// AdaptMDM maps a mobile-device-management row.
func AdaptMDM(row Row) (*models.Fact, bool) {
	hostname := identity.Normalize(row.str("deviceName"))
	if hostname == "" {
		return nil, false
	}

	detail := &models.MDMDetail{
		Compliant:    row.boolPtr("compliant"),
		Encrypted:    row.boolPtr("encrypted"),
		LastCheckIn:  row.timePtr("lastCheckIn"),
		SerialNumber: row.str("serialNumber"),
		Manufacturer: row.str("manufacturer"),
		Model:        row.str("model"),
		OS:           row.str("os"),
		User:         row.str("user"),
		Ownership:    row.str("ownership"),
	}

	return &models.Fact{
		Source:       models.SourceMDM,
		Hostname:     hostname,
		LastSeen:     detail.LastCheckIn,
		User:         optional(detail.User),
		SerialNumber: optional(detail.SerialNumber),
		Manufacturer: optional(detail.Manufacturer),
		Model:        optional(detail.Model),
		MDM:          detail,
	}, true
}

// AdaptAsset maps an IT asset-management row. AssetMgmt is the sole
// source of department and location.
func AdaptAsset(row Row) (*models.Fact, bool) {
	hostname := identity.Normalize(row.str("name"))
	if hostname == "" {
		return nil, false
	}

	detail := &models.AssetDetail{
		Department:   row.str("department"),
		Location:     row.str("location"),
		SerialNumber: row.str("serialNumber"),
		Manufacturer: row.str("manufacturer"),
		Model:        row.str("model"),
		AssignedUser: row.str("assignedUser"),
		Status:       row.str("status"),
	}

	return &models.Fact{
		Source:       models.SourceAssetMgmt,
		Hostname:     hostname,
		User:         optional(detail.AssignedUser),
		SerialNumber: optional(detail.SerialNumber),
		Manufacturer: optional(detail.Manufacturer),
		Model:        optional(detail.Model),
		Department:   optional(detail.Department),
		Location:     optional(detail.Location),
		Asset:        detail,
	}, true
}

// AdaptOnPrem maps an on-premises directory row.
func AdaptOnPrem(row Row) (*models.Fact, bool) {
	hostname := identity.Normalize(row.str("name"))
	if hostname == "" {
		return nil, false
	}

	detail := &models.OnPremDetail{
		Enabled:   row.boolPtr("enabled"),
		LastLogon: row.timePtr("lastLogon"),
		OS:        row.str("operatingSystem"),
		OrgUnit:   row.str("orgUnit"),
	}

	return &models.Fact{
		Source:   models.SourceOnPrem,
		Hostname: hostname,
		LastSeen: detail.LastLogon,
		OnPrem:   detail,
	}, true
}

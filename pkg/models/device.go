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

package models

import "time"

// Device is the unified inventory entity. Hostname is the canonical
// identity key; base fields stay nil until a source populates them under
// the merge engine's precedence rules. One detail sub-record per platform
// preserves that platform's own view of the device.
type Device struct {
	Hostname     string     `json:"hostname"`
	Sources      []Source   `json:"sources"`
	SerialNumber *string    `json:"serial_number,omitempty"`
	Manufacturer *string    `json:"manufacturer,omitempty"`
	Model        *string    `json:"model,omitempty"`
	LastSeen     *time.Time `json:"last_seen,omitempty"`
	User         *string    `json:"user,omitempty"`
	Department   *string    `json:"department,omitempty"`
	Location     *string    `json:"location,omitempty"`
	RiskScore    int        `json:"risk_score"`

	EDR       *EDRDetail       `json:"edr,omitempty"`
	Directory *DirectoryDetail `json:"directory,omitempty"`
	MDM       *MDMDetail       `json:"mdm,omitempty"`
	Asset     *AssetDetail     `json:"asset,omitempty"`
	OnPrem    *OnPremDetail    `json:"onprem,omitempty"`
}

// EDRDetail is the endpoint-protection agent's view of a device.
type EDRDetail struct {
	Status             string     `json:"status,omitempty"`
	DetectionsDisabled bool       `json:"detections_disabled"`
	LastSeen           *time.Time `json:"last_seen,omitempty"`
	User               string     `json:"user,omitempty"`
	SerialNumber       string     `json:"serial_number,omitempty"`
	Manufacturer       string     `json:"manufacturer,omitempty"`
	Model              string     `json:"model,omitempty"`
	Platform           string     `json:"platform,omitempty"`
	AgentVersion       string     `json:"agent_version,omitempty"`
}

// DirectoryDetail is the cloud identity directory's view of a device.
// Enabled and Compliant are nil when the source did not report them.
type DirectoryDetail struct {
	Enabled      *bool      `json:"enabled,omitempty"`
	Compliant    *bool      `json:"compliant,omitempty"`
	LastSignIn   *time.Time `json:"last_sign_in,omitempty"`
	OS           string     `json:"os,omitempty"`
	User         string     `json:"user,omitempty"`
	Manufacturer string     `json:"manufacturer,omitempty"`
	Model        string     `json:"model,omitempty"`
	TrustType    string     `json:"trust_type,omitempty"`
}

// MDMDetail is the mobile-device-management service's view of a device.
type MDMDetail struct {
	Compliant    *bool      `json:"compliant,omitempty"`
	Encrypted    *bool      `json:"encrypted,omitempty"`
	LastCheckIn  *time.Time `json:"last_check_in,omitempty"`
	SerialNumber string     `json:"serial_number,omitempty"`
	Manufacturer string     `json:"manufacturer,omitempty"`
	Model        string     `json:"model,omitempty"`
	OS           string     `json:"os,omitempty"`
	User         string     `json:"user,omitempty"`
	Ownership    string     `json:"ownership,omitempty"`
}

// AssetDetail is the asset-management system's view of a device. It is
// the sole source of department and location.
type AssetDetail struct {
	Department   string `json:"department,omitempty"`
	Location     string `json:"location,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	AssignedUser string `json:"assigned_user,omitempty"`
	Status       string `json:"status,omitempty"`
}

// OnPremDetail is the on-premises directory's view of a device.
type OnPremDetail struct {
	Enabled   *bool      `json:"enabled,omitempty"`
	LastLogon *time.Time `json:"last_logon,omitempty"`
	OS        string     `json:"os,omitempty"`
	OrgUnit   string     `json:"org_unit,omitempty"`
}

// HasSource reports whether the given platform reported this device.
func (d *Device) HasSource(s Source) bool {
	for _, have := range d.Sources {
		if have == s {
			return true
		}
	}

	return false
}

// AddSource appends the platform tag with set semantics: a platform that
// reports the same hostname twice contributes one tag.
func (d *Device) AddSource(s Source) {
	if !d.HasSource(s) {
		d.Sources = append(d.Sources, s)
	}
}

// Clone returns a deep copy. Readers of a published snapshot receive
// clones so engine state is never reachable for mutation.
func (d *Device) Clone() *Device {
	if d == nil {
		return nil
	}

	clone := *d
	clone.Sources = append([]Source(nil), d.Sources...)
	clone.SerialNumber = cloneStringPtr(d.SerialNumber)
	clone.Manufacturer = cloneStringPtr(d.Manufacturer)
	clone.Model = cloneStringPtr(d.Model)
	clone.LastSeen = cloneTimePtr(d.LastSeen)
	clone.User = cloneStringPtr(d.User)
	clone.Department = cloneStringPtr(d.Department)
	clone.Location = cloneStringPtr(d.Location)

	if d.EDR != nil {
		detail := *d.EDR
		detail.LastSeen = cloneTimePtr(d.EDR.LastSeen)
		clone.EDR = &detail
	}

	if d.Directory != nil {
		detail := *d.Directory
		detail.Enabled = cloneBoolPtr(d.Directory.Enabled)
		detail.Compliant = cloneBoolPtr(d.Directory.Compliant)
		detail.LastSignIn = cloneTimePtr(d.Directory.LastSignIn)
		clone.Directory = &detail
	}

	if d.MDM != nil {
		detail := *d.MDM
		detail.Compliant = cloneBoolPtr(d.MDM.Compliant)
		detail.Encrypted = cloneBoolPtr(d.MDM.Encrypted)
		detail.LastCheckIn = cloneTimePtr(d.MDM.LastCheckIn)
		clone.MDM = &detail
	}

	if d.Asset != nil {
		detail := *d.Asset
		clone.Asset = &detail
	}

	if d.OnPrem != nil {
		detail := *d.OnPrem
		detail.Enabled = cloneBoolPtr(d.OnPrem.Enabled)
		detail.LastLogon = cloneTimePtr(d.OnPrem.LastLogon)
		clone.OnPrem = &detail
	}

	return &clone
}

func cloneStringPtr(v *string) *string {
	if v == nil {
		return nil
	}

	out := *v

	return &out
}

func cloneTimePtr(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}

	out := *v

	return &out
}

func cloneBoolPtr(v *bool) *bool {
	if v == nil {
		return nil
	}

	out := *v

	return &out
}

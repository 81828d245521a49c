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

// Package registry folds adapted per-platform facts into the unified
// device inventory. The fold is deterministic: same rows in the same
// order always produce the same inventory.
package registry

import (
	"github.com/carverauto/fleetradar/pkg/ingest"
	"github.com/carverauto/fleetradar/pkg/models"
)

// MergeResult carries one fold's inventory plus its per-source
// bookkeeping for the snapshot log line.
type MergeResult struct {
	Inventory *Inventory
	Rows      map[models.Source]int
	Dropped   map[models.Source]int
}

// Merge folds raw rows from every platform into a fresh inventory.
// Sources are processed in fixed order (EDR, Directory, MDM, AssetMgmt,
// OnPremDirectory) and rows keep their upload order within a source, so
// the field-precedence rules below are reproducible. Rows whose
// identity normalizes to empty are dropped before the fold and only
// counted.
func Merge(rowsBySource map[models.Source][]ingest.Row) *MergeResult {
	result := &MergeResult{
		Inventory: NewInventory(),
		Rows:      make(map[models.Source]int, len(rowsBySource)),
		Dropped:   make(map[models.Source]int, len(rowsBySource)),
	}

	for _, source := range models.SourceOrder() {
		rows := rowsBySource[source]
		if len(rows) == 0 {
			continue
		}

		result.Rows[source] = len(rows)

		for _, row := range rows {
			fact, ok := ingest.Adapt(source, row)
			if !ok {
				result.Dropped[source]++
				continue
			}

			applyFact(result.Inventory, fact)
		}
	}

	return result
}

// applyFact merges one fact into the inventory: tag the source with set
// semantics, attach the platform detail wholesale (last row wins within
// a source), then run the field-precedence rules.
func applyFact(inv *Inventory, fact *models.Fact) {
	device := inv.upsert(fact.Hostname)

	device.AddSource(fact.Source)
	attachDetail(device, fact)
	applyPrecedence(device, fact)
}

// attachDetail replaces the device's sub-record for the fact's
// platform. A platform reporting the same hostname twice keeps only
// its last row's detail.
func attachDetail(device *models.Device, fact *models.Fact) {
	switch fact.Source {
	case models.SourceEDR:
		device.EDR = fact.EDR
	case models.SourceDirectory:
		device.Directory = fact.Directory
	case models.SourceMDM:
		device.MDM = fact.MDM
	case models.SourceAssetMgmt:
		device.Asset = fact.Asset
	case models.SourceOnPrem:
		device.OnPrem = fact.OnPrem
	}
}

// applyPrecedence populates the device's base fields from the fact.
// Cross-source fallback is first-writer-wins in processing order, with
// two authoritative exceptions: EDR overwrites lastSeen and user on
// every occurrence, and AssetMgmt overwrites department and location.
func applyPrecedence(device *models.Device, fact *models.Fact) {
	if fact.Source == models.SourceEDR {
		device.LastSeen = fact.LastSeen
		device.User = fact.User
	} else {
		if device.LastSeen == nil {
			device.LastSeen = fact.LastSeen
		}

		if device.User == nil {
			device.User = fact.User
		}
	}

	if fact.Source == models.SourceAssetMgmt {
		device.Department = fact.Department
		device.Location = fact.Location
	}

	if device.SerialNumber == nil {
		device.SerialNumber = fact.SerialNumber
	}

	if device.Manufacturer == nil {
		device.Manufacturer = fact.Manufacturer
	}

	if device.Model == nil {
		device.Model = fact.Model
	}
}

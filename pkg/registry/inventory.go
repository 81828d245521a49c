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

package registry

import (
	"sync"

	"github.com/carverauto/fleetradar/pkg/models"
)

// Inventory is the merged device collection. Devices keep the order in
// which their hostname was first encountered during the fold, which
// makes every downstream listing and aggregate reproducible. Reads
// hand out deep clones so no caller can mutate engine state.
type Inventory struct {
	mu      sync.RWMutex
	order   []string
	devices map[string]*models.Device
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{
		devices: make(map[string]*models.Device),
	}
}

// upsert returns the device for a canonical hostname, creating it with
// all base fields null on first sight. First creation fixes the
// device's position in collection order.
func (inv *Inventory) upsert(hostname string) *models.Device {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if device, ok := inv.devices[hostname]; ok {
		return device
	}

	device := &models.Device{Hostname: hostname}
	inv.devices[hostname] = device
	inv.order = append(inv.order, hostname)

	return device
}

// Len returns the device count.
func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	return len(inv.devices)
}

// Devices returns clones of every device in stable first-encountered
// order.
func (inv *Inventory) Devices() []*models.Device {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make([]*models.Device, 0, len(inv.order))
	for _, hostname := range inv.order {
		out = append(out, inv.devices[hostname].Clone())
	}

	return out
}

// Device returns a clone of the device for a canonical hostname.
func (inv *Inventory) Device(hostname string) (*models.Device, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	device, ok := inv.devices[hostname]
	if !ok {
		return nil, false
	}

	return device.Clone(), true
}

// ScoreAll recomputes every device's risk score in place. The pipeline
// calls it once per fold, before the inventory is published; scores are
// never adjusted incrementally.
func (inv *Inventory) ScoreAll(score func(*models.Device) int) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	for _, hostname := range inv.order {
		device := inv.devices[hostname]
		device.RiskScore = score(device)
	}
}

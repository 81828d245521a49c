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

// Package core owns the ingest-to-summary pipeline and its published
// snapshot. A source upload replaces that source's rows and reruns the
// whole pipeline synchronously; readers always see one coherent
// snapshot, never a half-updated inventory.
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/fleetradar/pkg/aggregate"
	"github.com/carverauto/fleetradar/pkg/identity"
	"github.com/carverauto/fleetradar/pkg/ingest"
	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/models"
	"github.com/carverauto/fleetradar/pkg/registry"
	"github.com/carverauto/fleetradar/pkg/risk"
)

// ErrUnknownSource reports a source tag outside the five platforms.
// The API layer rejects these before they get here; seeing this error
// from inside the service is a programming bug.
var ErrUnknownSource = errors.New("unknown source")

// SnapshotListener receives each freshly published snapshot. Listeners
// run synchronously after the swap and must not block.
type SnapshotListener func(*models.InventorySnapshot)

// Option customises the behaviour of the Server.
type Option func(*Server)

// Server owns the five sources' latest raw rows and the current
// snapshot. One RWMutex guards both; the snapshot itself is immutable
// once published.
type Server struct {
	mu        sync.RWMutex
	logger    logger.Logger
	agg       *aggregate.Aggregator
	now       func() time.Time
	newID     func() string
	rows      map[models.Source][]ingest.Row
	current   *snapshotState
	listeners []SnapshotListener
	startedAt time.Time
}

// snapshotState bundles everything one pipeline run produced.
type snapshotState struct {
	inventory *registry.Inventory
	summary   *models.FleetSummary
	meta      models.SummaryMeta
}

// NewServer constructs a Server with an empty, fully formed snapshot
// so readers never observe nil state.
func NewServer(log logger.Logger, opts ...Option) *Server {
	s := &Server{
		logger: log,
		agg:    aggregate.NewAggregator(aggregate.WithLogger(log)),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		rows:   make(map[models.Source][]ingest.Row),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.startedAt = s.now().UTC()
	s.current = s.compute()
	s.logSnapshotSwap(nil, s.current)

	return s
}

// WithAggregator replaces the default aggregator, typically to pin its
// clock or active window.
func WithAggregator(agg *aggregate.Aggregator) Option {
	return func(s *Server) {
		if agg != nil {
			s.agg = agg
		}
	}
}

// WithClock injects a deterministic clock (used for tests).
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithSnapshotIDs overrides snapshot ID generation (used for tests).
func WithSnapshotIDs(gen func() string) Option {
	return func(s *Server) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// AddSnapshotListener registers a callback for future snapshot swaps.
// The live summary stream subscribes here.
func (s *Server) AddSnapshotListener(listener SnapshotListener) {
	if listener == nil {
		return
	}

	s.mu.Lock()
	s.listeners = append(s.listeners, listener)
	s.mu.Unlock()
}

// UploadResult summarises one source replacement for the API response.
type UploadResult struct {
	Source       models.Source `json:"source"`
	Rows         int           `json:"rows"`
	Dropped      int           `json:"dropped"`
	TotalDevices int           `json:"total_devices"`
	SnapshotID   string        `json:"snapshot_id"`
}

// SetSourceRows replaces one source's rows and runs the pipeline:
// adapt, merge, score, aggregate, then swap in the new snapshot
// atomically. The call is synchronous; when it returns, readers see
// the new state.
func (s *Server) SetSourceRows(ctx context.Context, source models.Source, rows []ingest.Row) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("upload aborted: %w", err)
	}

	canonical, ok := models.ParseSource(string(source))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	source = canonical

	s.mu.Lock()
	s.rows[source] = rows

	previous := s.current
	s.current = s.compute()
	snapshot := s.current
	listeners := append([]SnapshotListener(nil), s.listeners...)
	s.mu.Unlock()

	s.logSnapshotSwap(previous, snapshot)
	s.notify(listeners, snapshot)

	return &UploadResult{
		Source:       source,
		Rows:         snapshot.meta.SourceRows[source],
		Dropped:      snapshot.meta.DroppedRows[source],
		TotalDevices: snapshot.summary.TotalDevices,
		SnapshotID:   snapshot.meta.SnapshotID,
	}, nil
}

// compute runs merge, score and aggregate over the current rows.
// Callers hold the write lock or have exclusive access.
func (s *Server) compute() *snapshotState {
	started := s.now()

	merged := registry.Merge(s.rows)

	scoreAt := started.UTC()
	merged.Inventory.ScoreAll(func(d *models.Device) int {
		return risk.Score(d, scoreAt)
	})

	summary := s.agg.Summarize(merged.Inventory.Devices())

	return &snapshotState{
		inventory: merged.Inventory,
		summary:   summary,
		meta: models.SummaryMeta{
			SnapshotID:  s.newID(),
			ComputedAt:  scoreAt,
			DurationMS:  s.now().Sub(started).Milliseconds(),
			SourceRows:  merged.Rows,
			DroppedRows: merged.Dropped,
		},
	}
}

// notify hands the published snapshot to every listener as clones.
func (s *Server) notify(listeners []SnapshotListener, state *snapshotState) {
	if len(listeners) == 0 {
		return
	}

	for _, listener := range listeners {
		listener(state.export())
	}
}

// export clones a published state for consumers outside the lock.
func (st *snapshotState) export() *models.InventorySnapshot {
	return &models.InventorySnapshot{
		Devices: st.inventory.Devices(),
		Summary: st.summary.Clone(),
		Meta:    st.meta.Clone(),
	}
}

// Devices returns clones of the current snapshot's devices in stable
// collection order.
func (s *Server) Devices() []*models.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current.inventory.Devices()
}

// Device returns a clone of one device. The hostname is normalized
// before lookup, so callers may pass the raw form.
func (s *Server) Device(hostname string) (*models.Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current.inventory.Device(identity.Normalize(hostname))
}

// Summary returns a clone of the current fleet summary.
func (s *Server) Summary() *models.FleetSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current.summary.Clone()
}

// Meta returns the bookkeeping for the current snapshot.
func (s *Server) Meta() models.SummaryMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current.meta.Clone()
}

// Snapshot returns the whole published state as clones.
func (s *Server) Snapshot() *models.InventorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current.export()
}

// StartedAt reports when this server instance came up.
func (s *Server) StartedAt() time.Time {
	return s.startedAt
}

// Uptime reports how long this server instance has been up.
func (s *Server) Uptime() time.Duration {
	return s.now().UTC().Sub(s.startedAt)
}

func (s *Server) logSnapshotSwap(previous, current *snapshotState) {
	if s.logger == nil || current == nil {
		return
	}

	totalRows, totalDropped := 0, 0
	for _, n := range current.meta.SourceRows {
		totalRows += n
	}

	for _, n := range current.meta.DroppedRows {
		totalDropped += n
	}

	event := s.logger.Info().
		Str("component", "pipeline").
		Str("snapshot_id", current.meta.SnapshotID).
		Time("computed_at", current.meta.ComputedAt).
		Int64("duration_ms", current.meta.DurationMS).
		Int("total_devices", current.summary.TotalDevices).
		Int("source_rows", totalRows).
		Int("dropped_rows", totalDropped).
		Int("unprotected", current.summary.Unprotected).
		Int("non_compliant", current.summary.NonCompliant).
		Int("high_risk", current.summary.RiskBuckets.High)

	if previous != nil {
		event = event.
			Int("prev_total_devices", previous.summary.TotalDevices).
			Int("delta_total_devices", current.summary.TotalDevices-previous.summary.TotalDevices)
	} else {
		event = event.Bool("initial_snapshot", true)
	}

	if current.summary.TotalDevices == 0 {
		event = event.Bool("zero_total_devices", true)
	}

	event.Msg("Inventory snapshot refreshed")
}

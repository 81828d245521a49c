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

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/fleetradar/pkg/models"
	"github.com/carverauto/fleetradar/pkg/query"
	"github.com/carverauto/fleetradar/pkg/risk"
	"github.com/carverauto/fleetradar/pkg/version"
)

// RunDevices handles the devices subcommand.
func RunDevices(ctx context.Context, cfg *CmdConfig, w io.Writer) error {
	snapshot, err := BuildSnapshot(ctx, cfg)
	if err != nil {
		return err
	}

	devices := query.Filter(snapshot.Devices, cfg.Query)
	devices = filterMinRisk(devices, cfg.MinRisk)

	if cfg.Limit > 0 && len(devices) > cfg.Limit {
		devices = devices[:cfg.Limit]
	}

	if cfg.JSONOutput {
		return writeJSON(w, devices)
	}

	_, err = fmt.Fprint(w, renderDeviceTable(devices))

	return err
}

// RunVersion prints the CLI build identity.
func RunVersion(w io.Writer) error {
	_, err := fmt.Fprintf(w, "fleetradar-cli %s\n", version.GetFullVersion())

	return err
}

func filterMinRisk(devices []*models.Device, minRisk int) []*models.Device {
	if minRisk <= 0 {
		return devices
	}

	out := make([]*models.Device, 0, len(devices))

	for _, device := range devices {
		if device.RiskScore >= minRisk {
			out = append(out, device)
		}
	}

	return out
}

// renderDeviceTable hand-builds a fixed-width table; column widths
// follow the widest cell.
func renderDeviceTable(devices []*models.Device) string {
	styles := newReportStyles()

	if len(devices) == 0 {
		return styles.muted.Render("no devices matched") + "\n"
	}

	header := []string{"HOSTNAME", "RISK", "USER", "DEPARTMENT", "SOURCES", "LAST SEEN"}

	rows := make([][]string, 0, len(devices))

	for _, device := range devices {
		rows = append(rows, []string{
			device.Hostname,
			fmt.Sprintf("%d", device.RiskScore),
			orDash(device.User),
			orDash(device.Department),
			joinSources(device.Sources),
			lastSeenLabel(device.LastSeen),
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder

	for i, h := range header {
		b.WriteString(styles.section.Render(fmt.Sprintf("%-*s", widths[i], h)))
		b.WriteString("  ")
	}

	b.WriteString("\n")

	for rowIdx, row := range rows {
		device := devices[rowIdx]

		for i, cell := range row {
			style := styles.label

			switch i {
			case 1:
				style = riskStyle(&styles, device.RiskScore)
			case 5:
				style = styles.muted
			}

			b.WriteString(style.Render(fmt.Sprintf("%-*s", widths[i], cell)))
			b.WriteString("  ")
		}

		b.WriteString("\n")
	}

	return b.String()
}

func riskStyle(styles *reportStyles, score int) lipgloss.Style {
	switch risk.Bucket(score) {
	case models.RiskLow:
		return styles.good
	case models.RiskMedium:
		return styles.medium
	case models.RiskElevated:
		return styles.elevated
	case models.RiskHigh:
		return styles.bad
	default:
		return styles.label
	}
}

func orDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}

	return *v
}

func joinSources(sources []models.Source) string {
	if len(sources) == 0 {
		return "-"
	}

	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		parts = append(parts, string(s))
	}

	return strings.Join(parts, ",")
}

func lastSeenLabel(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return t.UTC().Format("2006-01-02")
}

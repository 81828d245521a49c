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
)

const (
	riskBarWidth   = 24
	topDepartments = 5
)

// reportStyles defines the Dracula-palette styles for rendered output.
type reportStyles struct {
	title    lipgloss.Style
	section  lipgloss.Style
	label    lipgloss.Style
	muted    lipgloss.Style
	good     lipgloss.Style
	medium   lipgloss.Style
	elevated lipgloss.Style
	bad      lipgloss.Style
}

func newReportStyles() reportStyles {
	return reportStyles{
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaPink)).
			Bold(true),
		section: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaCyan)).
			Bold(true),
		label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaForeground)),
		muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaComment)),
		good: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaGreen)),
		medium: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaYellow)),
		elevated: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaOrange)),
		bad: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaRed)).
			Bold(true),
	}
}

// reportPayload is the -json shape of the report subcommand.
type reportPayload struct {
	Summary *models.FleetSummary `json:"summary"`
	Meta    models.SummaryMeta   `json:"meta"`
}

// RunReport handles the report subcommand.
func RunReport(ctx context.Context, cfg *CmdConfig, w io.Writer) error {
	snapshot, err := BuildSnapshot(ctx, cfg)
	if err != nil {
		return err
	}

	if cfg.JSONOutput {
		return writeJSON(w, reportPayload{Summary: snapshot.Summary, Meta: snapshot.Meta})
	}

	_, err = fmt.Fprint(w, renderReport(snapshot.Summary, snapshot.Meta))

	return err
}

// renderReport lays out the fleet summary section by section.
func renderReport(summary *models.FleetSummary, meta models.SummaryMeta) string {
	styles := newReportStyles()

	var b strings.Builder

	title := lipgloss.JoinHorizontal(
		lipgloss.Top,
		lipgloss.NewStyle().Foreground(lipgloss.Color(draculaPurple)).Render("📡 "),
		styles.title.Render("FleetRadar Fleet Report"),
	)
	b.WriteString(title + "\n")

	b.WriteString(styles.muted.Render(fmt.Sprintf(
		"generated %s | snapshot %s | %d devices",
		summary.GeneratedAt.Format(time.RFC3339), meta.SnapshotID, summary.TotalDevices)) + "\n\n")

	b.WriteString(renderCoverage(&styles, summary, meta))
	b.WriteString(renderRisk(&styles, summary))
	b.WriteString(renderStaleness(&styles, summary))
	b.WriteString(renderDepartments(&styles, summary))
	b.WriteString(renderOSAndManufacturers(&styles, summary))

	return b.String()
}

func renderCoverage(styles *reportStyles, summary *models.FleetSummary, meta models.SummaryMeta) string {
	var b strings.Builder

	b.WriteString(styles.section.Render("Source coverage") + "\n")

	for _, cov := range summary.Coverage {
		b.WriteString(styles.label.Render(fmt.Sprintf("  %-10s %4d devices", cov.Source, cov.Count)))
		b.WriteString(styles.muted.Render(fmt.Sprintf("   %d rows", meta.SourceRows[cov.Source])))

		if dropped := meta.DroppedRows[cov.Source]; dropped > 0 {
			b.WriteString(styles.elevated.Render(fmt.Sprintf(", %d dropped", dropped)))
		}

		b.WriteString("\n")
	}

	b.WriteString("\n")

	return b.String()
}

func renderRisk(styles *reportStyles, summary *models.FleetSummary) string {
	var b strings.Builder

	b.WriteString(styles.section.Render("Risk buckets") + "\n")

	buckets := []struct {
		name  string
		count int
		style lipgloss.Style
	}{
		{"low", summary.RiskBuckets.Low, styles.good},
		{"medium", summary.RiskBuckets.Medium, styles.medium},
		{"elevated", summary.RiskBuckets.Elevated, styles.elevated},
		{"high", summary.RiskBuckets.High, styles.bad},
	}

	maxCount := 0

	for _, bucket := range buckets {
		if bucket.count > maxCount {
			maxCount = bucket.count
		}
	}

	for _, bucket := range buckets {
		b.WriteString(styles.label.Render(fmt.Sprintf("  %-8s %4d ", bucket.name, bucket.count)))
		b.WriteString(bucket.style.Render(bar(bucket.count, maxCount, riskBarWidth)))
		b.WriteString("\n")
	}

	b.WriteString(styles.muted.Render(fmt.Sprintf(
		"  unprotected %d | detections disabled %d | non-compliant %d | unencrypted %d | disabled %d | unassigned %d",
		summary.Unprotected, summary.DetectionsDisabled, summary.NonCompliant,
		summary.Unencrypted, summary.Disabled, summary.Unassigned)) + "\n\n")

	return b.String()
}

// bar scales a count against the section maximum; any non-zero count
// draws at least one cell.
func bar(count, maxCount, width int) string {
	if count <= 0 || maxCount <= 0 {
		return ""
	}

	cells := count * width / maxCount
	if cells == 0 {
		cells = 1
	}

	return strings.Repeat("█", cells)
}

func renderStaleness(styles *reportStyles, summary *models.FleetSummary) string {
	if len(summary.Staleness) == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString(styles.section.Render("Staleness") + "\n")

	for _, bucket := range summary.Staleness {
		b.WriteString(styles.label.Render(fmt.Sprintf("  beyond %2dd ", bucket.ThresholdDays)))
		b.WriteString(styles.good.Render(fmt.Sprintf("%4d active", bucket.Active)))
		b.WriteString(styles.elevated.Render(fmt.Sprintf("  %4d stale", bucket.Stale)))
		b.WriteString(styles.muted.Render(fmt.Sprintf("  %4d unknown", bucket.Unknown)))
		b.WriteString("\n")
	}

	b.WriteString("\n")

	return b.String()
}

func renderDepartments(styles *reportStyles, summary *models.FleetSummary) string {
	if len(summary.Departments) == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString(styles.section.Render("Departments") + "\n")

	departments := summary.Departments
	if len(departments) > topDepartments {
		departments = departments[:topDepartments]
	}

	width := 0

	for _, dept := range departments {
		if len(dept.Department) > width {
			width = len(dept.Department)
		}
	}

	for _, dept := range departments {
		b.WriteString(styles.label.Render(fmt.Sprintf("  %-*s %4d devices ", width, dept.Department, dept.Total)))
		b.WriteString(styles.muted.Render(fmt.Sprintf("| protected %d%% | compliant %d%% | encrypted %d%%",
			dept.ProtectedPct, dept.CompliantPct, dept.EncryptedPct)))

		if dept.HighRisk > 0 {
			b.WriteString(styles.bad.Render(fmt.Sprintf(" | %d high risk", dept.HighRisk)))
		}

		b.WriteString("\n")
	}

	if hidden := len(summary.Departments) - topDepartments; hidden > 0 {
		b.WriteString(styles.muted.Render(fmt.Sprintf("  and %d more", hidden)) + "\n")
	}

	b.WriteString("\n")

	return b.String()
}

func renderOSAndManufacturers(styles *reportStyles, summary *models.FleetSummary) string {
	var b strings.Builder

	if len(summary.OSDistribution) > 0 {
		b.WriteString(styles.section.Render("Operating systems") + "\n")

		for _, class := range summary.OSDistribution {
			b.WriteString(styles.label.Render(fmt.Sprintf("  %-8s %4d", class.Class, class.Count)))
			b.WriteString(styles.muted.Render(fmt.Sprintf("   %d active", class.Active)))
			b.WriteString("\n")
		}

		b.WriteString("\n")
	}

	if len(summary.Manufacturers) > 0 {
		b.WriteString(styles.section.Render("Manufacturers") + "\n")

		for _, m := range summary.Manufacturers {
			b.WriteString(styles.label.Render(fmt.Sprintf("  %-24s %4d", m.Manufacturer, m.Count)) + "\n")
		}

		b.WriteString("\n")
	}

	return b.String()
}

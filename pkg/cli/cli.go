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

// Package cli implements the offline fleet reporter: it loads platform
// CSV exports, runs the merge, score and aggregate pipeline locally,
// and renders the result to the terminal.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/carverauto/fleetradar/pkg/aggregate"
	"github.com/carverauto/fleetradar/pkg/core"
	"github.com/carverauto/fleetradar/pkg/ingest"
	"github.com/carverauto/fleetradar/pkg/lifecycle"
	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/models"
)

// Dracula theme colors.
const (
	draculaForeground = "#F8F8F2"
	draculaCyan       = "#8BE9FD"
	draculaGreen      = "#50FA7B"
	draculaOrange     = "#FFB86C"
	draculaPink       = "#FF79C6"
	draculaPurple     = "#BD93F9"
	draculaRed        = "#FF5555"
	draculaYellow     = "#F1FA8C"
	draculaComment    = "#6272A4"
)

// SubcommandHandler defines the interface for parsing subcommand flags.
type SubcommandHandler interface {
	Parse(args []string, cfg *CmdConfig) error
}

// sourceFlags registers the five CSV export flags shared by the report
// and devices subcommands.
type sourceFlags struct {
	edr, directory, mdm, assetmgmt, onprem *string
}

func registerSourceFlags(fs *flag.FlagSet) sourceFlags {
	return sourceFlags{
		edr:       fs.String("edr", "", "path to the EDR agent CSV export"),
		directory: fs.String("directory", "", "path to the cloud directory CSV export"),
		mdm:       fs.String("mdm", "", "path to the MDM CSV export"),
		assetmgmt: fs.String("assetmgmt", "", "path to the asset management CSV export"),
		onprem:    fs.String("onprem", "", "path to the on-prem directory CSV export"),
	}
}

func (f sourceFlags) apply(cfg *CmdConfig) {
	cfg.EDRFile = *f.edr
	cfg.DirectoryFile = *f.directory
	cfg.MDMFile = *f.mdm
	cfg.AssetFile = *f.assetmgmt
	cfg.OnPremFile = *f.onprem
}

// ReportHandler handles flags for the report subcommand.
type ReportHandler struct{}

// Parse processes the command-line arguments for the report subcommand.
func (ReportHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	sources := registerSourceFlags(fs)
	jsonOut := fs.Bool("json", false, "emit raw JSON instead of styled output")
	window := fs.Int("active-window", 0, "active window in days for per-OS counts (default 30)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing report flags: %w", err)
	}

	sources.apply(cfg)
	cfg.JSONOutput = *jsonOut
	cfg.ActiveWindowDays = *window

	return nil
}

// DevicesHandler handles flags for the devices subcommand.
type DevicesHandler struct{}

// Parse processes the command-line arguments for the devices subcommand.
func (DevicesHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := flag.NewFlagSet("devices", flag.ExitOnError)
	sources := registerSourceFlags(fs)
	jsonOut := fs.Bool("json", false, "emit raw JSON instead of a styled table")
	q := fs.String("q", "", "filter on hostname, user, or department substring")
	minRisk := fs.Int("min-risk", 0, "only show devices at or above this risk score")
	limit := fs.Int("limit", 0, "maximum number of devices to show (0 = all)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing devices flags: %w", err)
	}

	sources.apply(cfg)
	cfg.JSONOutput = *jsonOut
	cfg.Query = *q
	cfg.MinRisk = *minRisk
	cfg.Limit = *limit

	return nil
}

// ParseFlags parses command-line flags and subcommands.
func ParseFlags() (*CmdConfig, error) {
	help := flag.Bool("help", false, "show help message")
	flag.Parse()

	cfg := &CmdConfig{
		Help: *help,
		Args: flag.Args(),
	}

	if len(os.Args) > 1 {
		cfg.SubCmd = os.Args[1]
	}

	subcommands := map[string]SubcommandHandler{
		"report":  ReportHandler{},
		"devices": DevicesHandler{},
	}

	if handler, exists := subcommands[cfg.SubCmd]; exists {
		if err := handler.Parse(os.Args[2:], cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// Run dispatches the parsed subcommand, writing rendered output to w.
func Run(ctx context.Context, cfg *CmdConfig, w io.Writer) error {
	switch cfg.SubCmd {
	case "report":
		return RunReport(ctx, cfg, w)
	case "devices":
		return RunDevices(ctx, cfg, w)
	case "version":
		return RunVersion(w)
	default:
		return fmt.Errorf("%w %q (expected report, devices, or version)", errUnknownCommand, cfg.SubCmd)
	}
}

// sourceFiles maps each platform to the export path given on the
// command line, skipping platforms without one.
func (c *CmdConfig) sourceFiles() map[models.Source]string {
	all := map[models.Source]string{
		models.SourceEDR:       c.EDRFile,
		models.SourceDirectory: c.DirectoryFile,
		models.SourceMDM:       c.MDMFile,
		models.SourceAssetMgmt: c.AssetFile,
		models.SourceOnPrem:    c.OnPremFile,
	}

	files := make(map[models.Source]string, len(all))

	for source, path := range all {
		if path != "" {
			files[source] = path
		}
	}

	return files
}

// BuildSnapshot loads the given CSV exports and runs the full pipeline
// once, offline. Pipeline logs go to stderr at warn level so styled
// stdout output stays clean.
func BuildSnapshot(ctx context.Context, cfg *CmdConfig) (*models.InventorySnapshot, error) {
	files := cfg.sourceFiles()
	if len(files) == 0 {
		return nil, errNoSourceFiles
	}

	log, err := lifecycle.CreateComponentLogger(ctx, "cli", &logger.Config{Level: "warn", Output: "stderr"})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	aggOpts := []aggregate.Option{aggregate.WithLogger(log)}
	if cfg.ActiveWindowDays > 0 {
		aggOpts = append(aggOpts, aggregate.WithActiveWindow(cfg.ActiveWindowDays))
	}

	server := core.NewServer(log, core.WithAggregator(aggregate.NewAggregator(aggOpts...)))

	for _, source := range models.SourceOrder() {
		path, ok := files[source]
		if !ok {
			continue
		}

		rows, err := readSourceCSV(path)
		if err != nil {
			return nil, fmt.Errorf("load %s rows: %w", source, err)
		}

		if _, err := server.SetSourceRows(ctx, source, rows); err != nil {
			return nil, fmt.Errorf("ingest %s rows: %w", source, err)
		}
	}

	return server.Snapshot(), nil
}

func readSourceCSV(path string) ([]ingest.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", errSourceReadFailed, path, err)
	}

	return ingest.ReadCSV(bytes.NewReader(data))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

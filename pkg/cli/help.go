package cli

import "fmt"

// ShowHelp displays the help message.
func ShowHelp() {
	fmt.Print(`fleetradar-cli: offline fleet inventory reporter

Usage:
  fleetradar-cli report [options]
  fleetradar-cli devices [options]
  fleetradar-cli version

Commands:
  report      Merge CSV exports and render the fleet posture summary
  devices     Merge CSV exports and list the unified devices
  version     Print build version

Source options (shared by report and devices, any subset):
  -edr string         path to the EDR agent CSV export
  -directory string   path to the cloud directory CSV export
  -mdm string         path to the MDM CSV export
  -assetmgmt string   path to the asset management CSV export
  -onprem string      path to the on-prem directory CSV export

Options for report:
  -json               emit raw JSON instead of styled output
  -active-window int  active window in days for per-OS counts (default 30)

Options for devices:
  -json               emit raw JSON instead of a styled table
  -q string           filter on hostname, user, or department substring
  -min-risk int       only show devices at or above this risk score
  -limit int          maximum number of devices to show (0 = all)

Examples:
  # Posture summary from two exports
  fleetradar-cli report -edr edr.csv -assetmgmt assets.csv

  # High-risk finance devices as JSON
  fleetradar-cli devices -edr edr.csv -assetmgmt assets.csv -q finance -min-risk 30 -json
`)
}

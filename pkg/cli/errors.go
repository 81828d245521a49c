package cli

import "errors"

var (
	errNoSourceFiles = errors.New(
		"at least one source export is required (-edr, -directory, -mdm, -assetmgmt, -onprem)")
	errSourceReadFailed = errors.New("failed to read source export")
	errUnknownCommand   = errors.New("unknown command")
)

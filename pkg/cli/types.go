package cli

// CmdConfig holds parsed command-line configuration.
type CmdConfig struct {
	Help   bool
	SubCmd string
	Args   []string

	// CSV exports, any subset of the five platforms.
	EDRFile       string
	DirectoryFile string
	MDMFile       string
	AssetFile     string
	OnPremFile    string

	// Rendering.
	JSONOutput       bool
	ActiveWindowDays int

	// devices filters.
	Query   string
	MinRisk int
	Limit   int
}

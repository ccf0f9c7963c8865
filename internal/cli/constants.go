package cli

// Default values for CLI output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// OutputJSON selects machine-readable command output.
	OutputJSON = "json"
)

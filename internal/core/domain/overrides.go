package domain

// Overrides are the inputs cargonode consumes from its own command line for one invocation.
type Overrides struct {
	// ConfigFile is an explicit project config path. Empty means discovery.
	ConfigFile string
	// Layer holds the highest-precedence field overrides for the requested job.
	Layer JobLayer
	// ExtraSteps are appended after the configured steps of the requested job.
	ExtraSteps []string
	Verbosity  int
	// Force runs every step even when its cached result is still valid.
	Force bool
	// Passthrough is forwarded verbatim to the requested job's tool.
	Passthrough []string
}

// RequestsHelp reports whether the passthrough arguments ask the tool for help.
// A leading "help" token counts, as do -h and --help before any "--".
func RequestsHelp(passthrough []string) bool {
	if len(passthrough) > 0 && passthrough[0] == "help" {
		return true
	}
	for _, arg := range passthrough {
		if arg == "--" {
			return false
		}
		if IsHelpFlag(arg) {
			return true
		}
	}
	return false
}

// IsHelpFlag reports whether tok is a help flag that must reach the delegated tool.
func IsHelpFlag(tok string) bool {
	return tok == "-h" || tok == "--help"
}

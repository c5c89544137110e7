package domain

const (
	// ManifestFileName is the npm manifest carrying the cargonode section.
	ManifestFileName = "package.json"
	// TOMLConfigFileName is the standalone TOML project config.
	TOMLConfigFileName = "cargonode.toml"
	// YAMLConfigFileName is the standalone YAML project config.
	YAMLConfigFileName = "cargonode.yaml"
	// YMLConfigFileName is the alternative YAML extension.
	YMLConfigFileName = "cargonode.yml"
	// ConfigSection is the key holding the job table in every config format.
	ConfigSection = "cargonode"

	// StateDirName is the per-project directory for cargonode state.
	StateDirName = ".cargonode"
	// JournalFileName is the execution journal inside StateDirName.
	JournalFileName = "journal.json"
	// CacheFileName holds the last successful fingerprint per job inside StateDirName.
	CacheFileName = "cache.json"
	// JournalMaxEntries caps the number of journal entries kept on disk.
	JournalMaxEntries = 100

	// ExitCodeFailure is returned for failures without a child exit code.
	ExitCodeFailure = 101
	// ExitCodeInterrupted is returned when the run was interrupted.
	ExitCodeInterrupted = 130
)

// ConfigDiscoveryOrder lists the file names searched when no config file is given.
func ConfigDiscoveryOrder() []string {
	return []string{TOMLConfigFileName, YAMLConfigFileName, YMLConfigFileName, ManifestFileName}
}

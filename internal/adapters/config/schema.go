package config

// JobDTO represents one job entry in the cargonode section of a project config.
// Pointer fields distinguish "absent" from "explicitly empty".
type JobDTO struct {
	Executable    *string           `json:"executable" toml:"executable" yaml:"executable"`
	Subcommand    *string           `json:"subcommand" toml:"subcommand" yaml:"subcommand"`
	Args          *[]string         `json:"args" toml:"args" yaml:"args"`
	Envs          map[string]string `json:"envs" toml:"envs" yaml:"envs"`
	WorkingDir    *string           `json:"working-dir" toml:"working-dir" yaml:"working-dir"`
	WorkingDirAlt *string           `json:"working_dir" toml:"working_dir" yaml:"working_dir"`
	Steps         *[]string         `json:"steps" toml:"steps" yaml:"steps"`
	Inputs        *[]string         `json:"inputs" toml:"inputs" yaml:"inputs"`
	Timeout       *string           `json:"timeout" toml:"timeout" yaml:"timeout"`
}

// fileDTO is the top level of the standalone cargonode.toml and cargonode.yaml files.
type fileDTO struct {
	Cargonode map[string]JobDTO `toml:"cargonode" yaml:"cargonode"`
}

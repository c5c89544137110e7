package domain

import "time"

// Command is one of the built-in jobs with a default tool.
type Command int

const (
	// CommandBuild bundles the project.
	CommandBuild Command = iota + 1
	// CommandCheck lints the project.
	CommandCheck
	// CommandFmt formats the project sources.
	CommandFmt
	// CommandTest runs the test suite.
	CommandTest
	// CommandRelease cuts a release.
	CommandRelease
	// CommandRun runs the built entry point.
	CommandRun
)

// Commands lists every built-in command in display order.
func Commands() []Command {
	return []Command{CommandBuild, CommandCheck, CommandFmt, CommandTest, CommandRelease, CommandRun}
}

// ParseCommand maps a job name onto a built-in command.
func ParseCommand(name string) (Command, bool) {
	for _, c := range Commands() {
		if c.String() == name {
			return c, true
		}
	}
	return 0, false
}

// String returns the job name of the command.
func (c Command) String() string {
	switch c {
	case CommandBuild:
		return "build"
	case CommandCheck:
		return "check"
	case CommandFmt:
		return "fmt"
	case CommandTest:
		return "test"
	case CommandRelease:
		return "release"
	case CommandRun:
		return "run"
	default:
		return ""
	}
}

// Alias returns the short name accepted on the command line, if any.
func (c Command) Alias() string {
	switch c {
	case CommandBuild:
		return "b"
	case CommandCheck:
		return "c"
	case CommandTest:
		return "t"
	case CommandRun:
		return "r"
	case CommandFmt, CommandRelease:
		return ""
	default:
		return ""
	}
}

// Summary is a one-line description used in help output.
func (c Command) Summary() string {
	switch c {
	case CommandBuild:
		return "Build or bundle the project (default: tsup)"
	case CommandCheck:
		return "Check the code (default: biome check)"
	case CommandFmt:
		return "Format files (default: biome format)"
	case CommandTest:
		return "Run tests (default: vitest run)"
	case CommandRelease:
		return "Release the project (default: release-it)"
	case CommandRun:
		return "Run a script or command (default: node dist/main.cjs)"
	default:
		return ""
	}
}

// Default returns the built-in layer for the command.
func (c Command) Default() JobLayer {
	switch c {
	case CommandBuild:
		return npxLayer("tsup", nil, []string{CommandCheck.String()}, 5*time.Minute)
	case CommandCheck:
		return npxLayer("biome", []string{"check"}, nil, time.Minute)
	case CommandFmt:
		return npxLayer("biome", []string{"format"}, nil, time.Minute)
	case CommandTest:
		return npxLayer("vitest", []string{"run"}, []string{CommandCheck.String()}, 5*time.Minute)
	case CommandRelease:
		return npxLayer("release-it", nil, []string{CommandBuild.String()}, 10*time.Minute)
	case CommandRun:
		return JobLayer{
			Executable: Ptr("node"),
			Subcommand: Ptr("dist/main.cjs"),
		}
	default:
		return JobLayer{}
	}
}

func npxLayer(tool string, args, steps []string, timeout time.Duration) JobLayer {
	return JobLayer{
		Executable: Ptr("npx"),
		Subcommand: Ptr(tool),
		Args:       args,
		Steps:      steps,
		Timeout:    Ptr(timeout),
	}
}

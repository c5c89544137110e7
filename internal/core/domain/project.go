package domain

import (
	"maps"
	"slices"
)

// ProjectConfig is the per-project job table read from the manifest.
type ProjectConfig struct {
	// Source is the file the table was read from. Empty when no file was found.
	Source string
	Jobs   map[string]JobLayer
}

// NewProjectConfig returns an empty project config.
func NewProjectConfig(source string) *ProjectConfig {
	return &ProjectConfig{
		Source: source,
		Jobs:   make(map[string]JobLayer),
	}
}

// Job returns the project layer for name.
func (p *ProjectConfig) Job(name string) (JobLayer, bool) {
	if p == nil {
		return JobLayer{}, false
	}
	l, ok := p.Jobs[name]
	return l, ok
}

// Names returns the configured job names in sorted order.
func (p *ProjectConfig) Names() []string {
	if p == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(p.Jobs))
}

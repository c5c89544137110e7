// Package config loads the per-project job table from package.json, cargonode.toml or cargonode.yaml.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.trai.ch/cargonode/internal/core/domain"
	"go.trai.ch/cargonode/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new config loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the project config. An explicit path must exist; without one the
// first file of domain.ConfigDiscoveryOrder found in cwd is used, and finding
// none yields an empty config.
func (l *Loader) Load(cwd, path string) (*domain.ProjectConfig, error) {
	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}
		data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				return nil, zerr.With(domain.ErrConfigNotFound, "path", path)
			}
			return nil, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
		}
		return l.parse(path, data)
	}

	for _, name := range domain.ConfigDiscoveryOrder() {
		candidate := filepath.Join(cwd, name)
		data, err := os.ReadFile(candidate) //nolint:gosec // candidate is built from a fixed file name
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				continue
			}
			return nil, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", candidate)
		}
		return l.parse(candidate, data)
	}

	l.logger.Debug("no project config found in " + cwd + ", using built-in defaults")
	return domain.NewProjectConfig(""), nil
}

func (l *Loader) parse(path string, data []byte) (*domain.ProjectConfig, error) {
	var (
		jobs map[string]JobDTO
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		jobs, err = decodeJSON(data)
	case ".toml":
		jobs, err = decodeTOML(data)
	case ".yaml", ".yml":
		jobs, err = decodeYAML(data)
	default:
		return nil, zerr.With(domain.ErrUnsupportedConfigFormat, "path", path)
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigMalformed.Error()), "path", path)
	}

	cfg := domain.NewProjectConfig(path)
	for name, dto := range jobs {
		layer, err := toLayer(name, dto)
		if err != nil {
			return nil, zerr.With(err, "path", path)
		}
		cfg.Jobs[name] = layer
	}

	l.logger.Info("loaded project config " + path)
	return cfg, nil
}

// decodeJSON reads the cargonode section of an npm manifest. Other manifest keys are ignored.
func decodeJSON(data []byte) (map[string]JobDTO, error) {
	var manifest map[string]json.RawMessage
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}

	section, ok := manifest[domain.ConfigSection]
	if !ok || bytes.Equal(bytes.TrimSpace(section), []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(section))
	dec.DisallowUnknownFields()
	var jobs map[string]JobDTO
	if err := dec.Decode(&jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func decodeTOML(data []byte) (map[string]JobDTO, error) {
	var file fileDTO
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, zerr.With(zerr.New("unknown field"), "key", undecoded[0].String())
	}
	return file.Cargonode, nil
}

func decodeYAML(data []byte) (map[string]JobDTO, error) {
	var file fileDTO
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return file.Cargonode, nil
}

func toLayer(name string, dto JobDTO) (domain.JobLayer, error) {
	if strings.TrimSpace(name) == "" {
		return domain.JobLayer{}, zerr.Wrap(zerr.New("empty job name"), domain.ErrConfigMalformed.Error())
	}

	layer := domain.JobLayer{
		Executable: dto.Executable,
		Subcommand: dto.Subcommand,
		Envs:       dto.Envs,
		WorkingDir: dto.WorkingDir,
	}
	if dto.Args != nil {
		layer.Args = append([]string{}, *dto.Args...)
	}
	if dto.Steps != nil {
		layer.Steps = append([]string{}, *dto.Steps...)
	}
	if dto.Inputs != nil {
		for _, pattern := range *dto.Inputs {
			if strings.TrimSpace(pattern) == "" {
				return domain.JobLayer{}, zerr.With(
					zerr.Wrap(zerr.New("empty input pattern"), domain.ErrConfigMalformed.Error()),
					"job", name,
				)
			}
		}
		layer.Inputs = append([]string{}, *dto.Inputs...)
	}

	if dto.WorkingDirAlt != nil {
		if dto.WorkingDir != nil && *dto.WorkingDir != *dto.WorkingDirAlt {
			return domain.JobLayer{}, zerr.With(
				zerr.Wrap(zerr.New("working-dir and working_dir disagree"), domain.ErrConfigMalformed.Error()),
				"job", name,
			)
		}
		layer.WorkingDir = dto.WorkingDirAlt
	}

	if dto.Timeout != nil {
		d, err := time.ParseDuration(*dto.Timeout)
		if err != nil || d < 0 {
			return domain.JobLayer{}, zerr.With(zerr.With(
				zerr.Wrap(zerr.New("invalid timeout"), domain.ErrConfigMalformed.Error()),
				"job", name), "timeout", *dto.Timeout)
		}
		layer.Timeout = &d
	}

	return layer, nil
}

// Package fs provides fingerprinting of resolved invocations and their input files.
package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/cargonode/internal/core/domain"
	"go.trai.ch/cargonode/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Fingerprinter = (*Hasher)(nil)

// Hasher computes xxhash fingerprints of resolved jobs.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// Fingerprint hashes the job name, its command line, its env overrides in key
// order, its working directory and the contents of its input files. Two
// invocations with the same fingerprint ran the same command over the same files.
func (h *Hasher) Fingerprint(job *domain.JobSpec, argv []string) (string, error) {
	hasher := xxhash.New()

	h.hashInvocation(job, argv, hasher)
	if err := h.hashInputFiles(job, hasher); err != nil {
		return "", zerr.With(err, "job", job.Name.String())
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

func (h *Hasher) hashInvocation(job *domain.JobSpec, argv []string, hasher *xxhash.Digest) {
	_, _ = hasher.WriteString(job.Name.String())
	_, _ = hasher.Write([]byte{0}) // Separator

	for _, arg := range argv {
		_, _ = hasher.WriteString(arg)
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0}) // Section separator

	for _, k := range slices.Sorted(maps.Keys(job.Envs)) {
		_, _ = hasher.WriteString(k)
		_, _ = hasher.Write([]byte{'='})
		_, _ = hasher.WriteString(job.Envs[k])
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})

	_, _ = hasher.WriteString(job.WorkingDir)
	_, _ = hasher.Write([]byte{0})
}

func (h *Hasher) hashInputFiles(job *domain.JobSpec, hasher *xxhash.Digest) error {
	if len(job.Inputs) == 0 {
		return nil
	}

	root := job.WorkingDir
	if root == "" {
		root = "."
	}

	files, err := h.walker.Match(root, job.Inputs)
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := h.hashFile(path, hasher); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hasher) hashFile(path string, mainHasher io.Writer) error {
	_, _ = mainHasher.Write([]byte(path))
	_, _ = mainHasher.Write([]byte{0})

	hash, err := h.ComputeFileHash(path)
	if err != nil {
		return err
	}

	if err := binary.Write(mainHasher, binary.LittleEndian, hash); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}

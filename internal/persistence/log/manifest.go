package log

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"antics.dev/internal/sim/tuning"
)

const manifestName = "manifest.json"

// Manifest sits next to a run's tick log and records what produced it, so
// the run can be replayed without repeating its flags.
type Manifest struct {
	RunID         string        `json:"run_id"`
	Scenario      string        `json:"scenario"`
	ProgramDigest string        `json:"program_digest"`
	Tuning        tuning.Tuning `json:"tuning"`
	StartedAt     string        `json:"started_at"`
}

func WriteManifest(runDir string, m Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(runDir, manifestName), b, 0o644)
}

func ReadManifest(runDir string) (Manifest, error) {
	var m Manifest
	b, err := os.ReadFile(filepath.Join(runDir, manifestName))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("%s: %w", manifestName, err)
	}
	return m, nil
}

// CheckUnused returns ErrRunExists when runDir already holds a manifest or
// any tick log segment. A missing runDir is unused.
func CheckUnused(runDir string) error {
	p := filepath.Join(runDir, manifestName)
	if _, err := os.Stat(p); err == nil {
		return fmt.Errorf("%w: %s", ErrRunExists, p)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	files, err := ListEventFiles(EventsDir(runDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(files) > 0 {
		return fmt.Errorf("%w: %s", ErrRunExists, files[0])
	}
	return nil
}

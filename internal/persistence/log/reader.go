package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"rtscore.dev/internal/sim/tuning"
	"rtscore.dev/internal/sim/world"
)

// ListTickFiles returns the tick log segments in dir in tick order.
func ListTickFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, tickFilePrefix) && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

// ReadTickFile decodes every entry of one segment in order. A segment holds
// one zstd frame per tick, so a file that is still being written reads up to
// its last completed tick. A non-nil error from fn stops the read and is
// returned.
func ReadTickFile(path string, fn func(world.TickLogEntry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for sc.Scan() {
		var entry world.TickLogEntry
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			return fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Manifest records what a tick log was produced from. Scenario names a file
// inside the world directory.
type Manifest struct {
	WorldID     string            `json:"world_id"`
	Seed        int64             `json:"seed"`
	TickRateHz  int               `json:"tick_rate_hz"`
	RulesDigest string            `json:"rules_digest"`
	Rules       map[string]string `json:"rules"`
	Scenario    string            `json:"scenario"`

	Tuning tuning.Tuning `json:"tuning"`
}

// ScenarioPath resolves the manifest's scenario file under worldDir.
func (m Manifest) ScenarioPath(worldDir string) string {
	if m.Scenario == "" || filepath.IsAbs(m.Scenario) {
		return m.Scenario
	}
	return filepath.Join(worldDir, m.Scenario)
}

func manifestPath(worldDir string) string { return filepath.Join(worldDir, "manifest.json") }

func WriteManifest(worldDir string, m Manifest) error {
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(manifestPath(worldDir), append(b, '\n'), 0o644)
}

func ReadManifest(worldDir string) (Manifest, error) {
	var m Manifest
	b, err := os.ReadFile(manifestPath(worldDir))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("manifest: %w", err)
	}
	return m, nil
}

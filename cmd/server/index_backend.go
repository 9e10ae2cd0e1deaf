package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rtscore.dev/internal/persistence/indexdb"
	"rtscore.dev/internal/sim/rules"
	"rtscore.dev/internal/sim/tuning"
	"rtscore.dev/internal/sim/world"
)

type runtimeIndex interface {
	world.TickLogger
	Close() error
	UpsertRules(rs *rules.Ruleset, tune tuning.Tuning) error
	Stats() indexdb.Stats
}

func openRuntimeIndex(worldDir string, disableDB bool, tune tuning.Tuning) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("RTS_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		dbPath := filepath.Join(worldDir, "index", "world.sqlite")
		return indexdb.OpenSQLite(dbPath, indexdb.OptionsFromTuning(tune))
	default:
		return nil, fmt.Errorf("unsupported RTS_INDEX_BACKEND: %s", backend)
	}
}

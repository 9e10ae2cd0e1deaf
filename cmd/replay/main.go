package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	persistlog "rtscore.dev/internal/persistence/log"
	"rtscore.dev/internal/sim/rules"
	"rtscore.dev/internal/sim/world"
)

func main() {
	var (
		worldDir = flag.String("world_dir", "", "world directory holding manifest.json and ticks/")
		rulesDir = flag.String("rules", "./configs/rules", "rules directory")
		fromTick = flag.Uint64("from_tick", 0, "start verifying from tick (inclusive, optional)")
		toTick   = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	if *worldDir == "" {
		fmt.Fprintln(os.Stderr, "missing -world_dir")
		os.Exit(2)
	}

	res, err := replay(*worldDir, *rulesDir, *fromTick, *toTick)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: world=%s checked=%d ticks last=%d digest=%s\n", res.WorldID, res.Checked, res.LastTick, res.LastDigest)
}

type result struct {
	WorldID    string
	Checked    uint64
	LastTick   uint64
	LastDigest string
}

var errStop = errors.New("stop")

// replay rebuilds the world from its manifest and steps it through the logged
// orders, comparing every digest from fromTick on.
func replay(worldDir, rulesDir string, fromTick, toTick uint64) (result, error) {
	var res result
	man, err := persistlog.ReadManifest(worldDir)
	if err != nil {
		return res, fmt.Errorf("read manifest: %w", err)
	}
	res.WorldID = man.WorldID

	rs, err := rules.Load(rulesDir)
	if err != nil {
		return res, fmt.Errorf("load rules: %w", err)
	}
	if rs.Digest != man.RulesDigest {
		for name, want := range man.Rules {
			if got := rs.Digests[name]; got != want {
				return res, fmt.Errorf("rules mismatch: %s digest=%s recorded=%s", name, got, want)
			}
		}
		return res, fmt.Errorf("rules mismatch: digest=%s recorded=%s", rs.Digest, man.RulesDigest)
	}

	sc, err := world.LoadScenario(man.ScenarioPath(worldDir))
	if err != nil {
		return res, fmt.Errorf("load scenario: %w", err)
	}
	tune := man.Tuning
	tune.Seed = man.Seed
	w, err := world.New(world.ConfigFromTuning(man.WorldID, tune), rs, sc)
	if err != nil {
		return res, fmt.Errorf("world: %w", err)
	}

	files, err := persistlog.ListTickFiles(persistlog.TicksDir(worldDir))
	if err != nil {
		return res, fmt.Errorf("list ticks: %w", err)
	}
	if len(files) == 0 {
		return res, fmt.Errorf("no tick files found in %s", persistlog.TicksDir(worldDir))
	}

	for _, path := range files {
		err := persistlog.ReadTickFile(path, func(entry world.TickLogEntry) error {
			if toTick != 0 && entry.Tick > toTick {
				return errStop
			}
			if entry.Tick != w.CurrentTick() {
				return fmt.Errorf("tick mismatch: want=%d got=%d (file=%s)", w.CurrentTick(), entry.Tick, filepath.Base(path))
			}
			tick, got := w.StepOnce(entry.Orders)
			if tick >= fromTick {
				res.Checked++
				if got != entry.Digest {
					return fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", tick, got, entry.Digest)
				}
			}
			res.LastTick, res.LastDigest = tick, got
			return nil
		})
		if errors.Is(err, errStop) {
			break
		}
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	persistlog "rtscore.dev/internal/persistence/log"
	"rtscore.dev/internal/sim/rules"
	"rtscore.dev/internal/sim/tuning"
	"rtscore.dev/internal/sim/world"
	"rtscore.dev/internal/transport/observer"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "http listen address")
		worldID      = flag.String("world", "match_1", "world id")
		seed         = flag.Int64("seed", 0, "override the tuning seed (0 keeps it)")
		configDir    = flag.String("configs", "./configs", "config directory")
		rulesDir     = flag.String("rules", "", "rules directory (default: <configs>/rules)")
		scenarioPath = flag.String("scenario", "", "path to scenario.yaml (default: <configs>/scenario.yaml)")
		tuningPath   = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dataDir      = flag.String("data", "./data", "runtime data directory")
		disableDB    = flag.Bool("disable_db", false, "disable the sqlite tick index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := orDefault(*tuningPath, filepath.Join(*configDir, "tuning.yaml"))
	rd := orDefault(*rulesDir, filepath.Join(*configDir, "rules"))
	sp := orDefault(*scenarioPath, filepath.Join(*configDir, "scenario.yaml"))

	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	rs, err := rules.Load(rd)
	if err != nil {
		logger.Fatalf("load rules: %v", err)
	}
	logger.Printf("rules %s", rs.Summary())

	sc, err := world.LoadScenario(sp)
	if err != nil {
		logger.Fatalf("load scenario: %v", err)
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	if files, _ := persistlog.ListTickFiles(persistlog.TicksDir(worldDir)); len(files) > 0 {
		logger.Fatalf("world dir %s already holds a tick log; pick another -world or remove it", worldDir)
	}
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		logger.Fatalf("mkdir: %v", err)
	}
	// The world dir carries its own copy of the scenario so it replays standalone.
	raw, err := os.ReadFile(sp)
	if err != nil {
		logger.Fatalf("read scenario: %v", err)
	}
	if err := os.WriteFile(filepath.Join(worldDir, "scenario.yaml"), raw, 0o644); err != nil {
		logger.Fatalf("copy scenario: %v", err)
	}

	w, err := world.New(world.ConfigFromTuning(*worldID, tune), rs, sc)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	if err := persistlog.WriteManifest(worldDir, persistlog.Manifest{
		WorldID:     *worldID,
		Seed:        tune.Seed,
		TickRateHz:  w.TickRateHz(),
		RulesDigest: rs.Digest,
		Rules:       rs.Digests,
		Scenario:    "scenario.yaml",
		Tuning:      tune,
	}); err != nil {
		logger.Fatalf("write manifest: %v", err)
	}

	tickLog, err := persistlog.NewTickLogger(worldDir, tune.TickLog.SegmentTicks)
	if err != nil {
		logger.Fatalf("open tick log: %v", err)
	}
	defer tickLog.Close()
	w.AddTickLogger(tickLog)

	// Optional read-model index; it never slows the simulation down.
	idx, err := openRuntimeIndex(worldDir, *disableDB, tune)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertRules(rs, tune); err != nil {
			logger.Printf("index backend: upsert rules: %v", err)
		}
		w.AddTickLogger(idx)
	}

	hub := observer.NewHubFromTuning(tune)
	w.AddTickLogger(hub)

	ctx, cancel := signalContext()
	defer cancel()

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	mux := newMux(muxConfig{
		World:    w,
		Hub:      hub,
		Index:    idx,
		Logger:   logger,
		Admin:    envBool("RTS_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP()),
		Observer: true,
	})
	if envBool("RTS_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (RTS_ENABLE_PPROF_HTTP=false)")
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s world=%s seed=%d rules=%s", *addr, *worldID, tune.Seed, rs.Digest)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
	cancel()
	<-worldDone
	logger.Printf("stopped at tick %d", w.CurrentTick())
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rtscore.dev/internal/sim/rules"
	"rtscore.dev/internal/sim/tuning"
	"rtscore.dev/internal/sim/world"
	"rtscore.dev/internal/transport/observer"
)

func findRepoRootForServerTests(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not locate go.mod from %s", dir)
		}
		dir = parent
	}
}

func newTestWorldForServer(t *testing.T) *world.World {
	t.Helper()
	root := findRepoRootForServerTests(t)
	rs, err := rules.Load(filepath.Join(root, "configs", "rules"))
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	sc, err := world.LoadScenario(filepath.Join(root, "configs", "scenario.yaml"))
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	w, err := world.New(world.ConfigFromTuning("match_test", tuning.Defaults()), rs, sc)
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w
}

type recordingSink struct {
	observer.WorldView
	got []world.Order
	max int
}

func (r *recordingSink) Submit(o world.Order) bool {
	if len(r.got) >= r.max {
		return false
	}
	r.got = append(r.got, o)
	return true
}

func TestMetrics_ReportsWorldAndPlayers(t *testing.T) {
	w := newTestWorldForServer(t)
	w.StepOnce(nil)
	mux := newMux(muxConfig{World: w, Hub: observer.NewHub(1, 1)})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	body := rec.Body.String()
	for _, want := range []string{
		`rts_world_tick{world="match_test"} 1`,
		`rts_player_cash{world="match_test",player="Greece"}`,
		`rts_observer_clients{world="match_test"} 0`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, `player="Neutral"`) {
		t.Fatalf("noncombatant player should not be reported:\n%s", body)
	}
}

func TestAdminOrders_SubmitsToInbox(t *testing.T) {
	sink := &recordingSink{WorldView: newTestWorldForServer(t), max: 1}
	mux := newMux(muxConfig{World: sink, Admin: true})

	orders := []world.Order{
		{Kind: world.OrderStop, Player: 1, Actor: 4},
		{Kind: world.OrderStop, Player: 1, Actor: 5},
	}
	b, _ := json.Marshal(orders)
	req := httptest.NewRequest(http.MethodPost, "/admin/v1/orders", bytes.NewReader(b))
	req.RemoteAddr = "127.0.0.1:4000"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d want 503 when inbox fills", rec.Code)
	}
	if len(sink.got) != 1 || sink.got[0].Actor != 4 {
		t.Fatalf("submitted=%+v", sink.got)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/v1/orders", strings.NewReader("{"))
	req.RemoteAddr = "127.0.0.1:4000"
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad body status=%d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/v1/orders", bytes.NewReader(b))
	req.RemoteAddr = "192.168.1.9:4000"
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("remote status=%d want 403", rec.Code)
	}
}

func TestAdminDisabled_HidesEndpoints(t *testing.T) {
	mux := newMux(muxConfig{World: &recordingSink{WorldView: newTestWorldForServer(t)}})
	req := httptest.NewRequest(http.MethodGet, "/admin/v1/state", nil)
	req.RemoteAddr = "127.0.0.1:4000"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404", rec.Code)
	}
}

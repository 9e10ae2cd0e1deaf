package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"

	"rtscore.dev/internal/sim/world"
	"rtscore.dev/internal/transport/observer"
)

// orderSink is the part of the world the admin order endpoint needs.
type orderSink interface {
	observer.WorldView
	Submit(o world.Order) bool
}

type muxConfig struct {
	World    orderSink
	Hub      *observer.Hub
	Index    runtimeIndex
	Logger   *log.Logger
	Admin    bool
	Observer bool
}

func newMux(cfg muxConfig) *http.ServeMux {
	w := cfg.World
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, w.ID(), w.Metrics(), cfg.Hub, cfg.Index)
	})

	if cfg.Admin {
		// Local-only admin endpoints.
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			m := w.Metrics()
			resp := struct {
				WorldID string             `json:"world_id"`
				Tick    uint64             `json:"tick"`
				Metrics world.WorldMetrics `json:"metrics"`
			}{
				WorldID: w.ID(),
				Tick:    m.Tick,
				Metrics: m,
			}
			_ = json.NewEncoder(rw).Encode(resp)
		})
		mux.HandleFunc("/admin/v1/orders", func(rw http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				rw.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			var orders []world.Order
			if err := json.NewDecoder(http.MaxBytesReader(rw, r.Body, 1<<20)).Decode(&orders); err != nil {
				http.Error(rw, "bad orders: "+err.Error(), http.StatusBadRequest)
				return
			}
			accepted := 0
			for _, o := range orders {
				if !w.Submit(o) {
					break
				}
				accepted++
			}
			rw.Header().Set("Content-Type", "application/json")
			if accepted < len(orders) {
				rw.WriteHeader(http.StatusServiceUnavailable)
			}
			_ = json.NewEncoder(rw).Encode(map[string]any{"accepted": accepted, "submitted": len(orders)})
		})
	} else if cfg.Logger != nil {
		cfg.Logger.Printf("admin endpoints disabled (RTS_ENABLE_ADMIN_HTTP=false)")
	}

	if cfg.Observer && cfg.Hub != nil {
		obsSrv := observer.NewServer(w, cfg.Hub, cfg.Logger)
		mux.HandleFunc("/observer/bootstrap", obsSrv.BootstrapHandler())
		mux.HandleFunc("/observer/ws", obsSrv.WSHandler())
	}
	return mux
}

// writeMetrics renders a minimal Prometheus exposition.
func writeMetrics(rw http.ResponseWriter, worldID string, m world.WorldMetrics, hub *observer.Hub, idx runtimeIndex) {
	fmt.Fprintf(rw, "# HELP rts_world_tick Current world tick.\n")
	fmt.Fprintf(rw, "# TYPE rts_world_tick gauge\n")
	fmt.Fprintf(rw, "rts_world_tick{world=%q} %d\n", worldID, m.Tick)
	fmt.Fprintf(rw, "# HELP rts_world_actors Live actors in the world.\n")
	fmt.Fprintf(rw, "# TYPE rts_world_actors gauge\n")
	fmt.Fprintf(rw, "rts_world_actors{world=%q} %d\n", worldID, m.Actors)
	fmt.Fprintf(rw, "# HELP rts_world_events Events emitted by the last tick.\n")
	fmt.Fprintf(rw, "# TYPE rts_world_events gauge\n")
	fmt.Fprintf(rw, "rts_world_events{world=%q} %d\n", worldID, m.Events)
	fmt.Fprintf(rw, "# HELP rts_world_queue_depth Backlog depth.\n")
	fmt.Fprintf(rw, "# TYPE rts_world_queue_depth gauge\n")
	fmt.Fprintf(rw, "rts_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "inbox", m.Inbox)
	fmt.Fprintf(rw, "rts_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "deferred", m.Deferred)
	fmt.Fprintf(rw, "# HELP rts_world_step_ms Last tick step duration in milliseconds.\n")
	fmt.Fprintf(rw, "# TYPE rts_world_step_ms gauge\n")
	fmt.Fprintf(rw, "rts_world_step_ms{world=%q} %.3f\n", worldID, m.StepMS)
	fmt.Fprintf(rw, "# HELP rts_player_cash Player cash.\n")
	fmt.Fprintf(rw, "# TYPE rts_player_cash gauge\n")
	for _, p := range m.PlayerStatus {
		fmt.Fprintf(rw, "rts_player_cash{world=%q,player=%q} %d\n", worldID, p.Name, p.Cash)
	}
	fmt.Fprintf(rw, "# HELP rts_player_excess_power Provided minus drained power.\n")
	fmt.Fprintf(rw, "# TYPE rts_player_excess_power gauge\n")
	for _, p := range m.PlayerStatus {
		fmt.Fprintf(rw, "rts_player_excess_power{world=%q,player=%q} %d\n", worldID, p.Name, p.ExcessPower)
	}
	fmt.Fprintf(rw, "# HELP rts_player_army Tracked combat actors.\n")
	fmt.Fprintf(rw, "# TYPE rts_player_army gauge\n")
	for _, p := range m.PlayerStatus {
		fmt.Fprintf(rw, "rts_player_army{world=%q,player=%q} %d\n", worldID, p.Name, p.Army)
	}
	if hub != nil {
		fmt.Fprintf(rw, "# HELP rts_observer_clients Connected observer clients.\n")
		fmt.Fprintf(rw, "# TYPE rts_observer_clients gauge\n")
		fmt.Fprintf(rw, "rts_observer_clients{world=%q} %d\n", worldID, hub.Subscribers())
	}
	if idx != nil {
		st := idx.Stats()
		fmt.Fprintf(rw, "# HELP rts_index_dropped_ticks Tick entries the index dropped under backpressure.\n")
		fmt.Fprintf(rw, "# TYPE rts_index_dropped_ticks counter\n")
		fmt.Fprintf(rw, "rts_index_dropped_ticks{world=%q} %d\n", worldID, st.DropTickTotal)
		fmt.Fprintf(rw, "# HELP rts_index_queue_depth Pending index entries.\n")
		fmt.Fprintf(rw, "# TYPE rts_index_queue_depth gauge\n")
		fmt.Fprintf(rw, "rts_index_queue_depth{world=%q} %d\n", worldID, st.QueueDepth)
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

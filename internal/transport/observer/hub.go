package observer

import (
	"encoding/json"
	"sync"

	"rtscore.dev/internal/observerproto"
	"rtscore.dev/internal/sim/tuning"
	"rtscore.dev/internal/sim/world"
)

type frame struct {
	tick uint64
	b    []byte
}

// Hub is a world.TickLogger that fans tick frames out to observer clients.
// Each entry is encoded once; slow clients lose their oldest frames.
type Hub struct {
	mu     sync.Mutex
	keep   int
	buffer int
	ring   []frame
	subs   map[uint64]chan []byte
	nextID uint64
}

var _ world.TickLogger = (*Hub)(nil)

func NewHub(keepTicks, sendBuffer int) *Hub {
	if keepTicks < 0 {
		keepTicks = 0
	}
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &Hub{keep: keepTicks, buffer: sendBuffer, subs: map[uint64]chan []byte{}}
}

// NewHubFromTuning sizes the hub from the observer section of the tuning file.
func NewHubFromTuning(t tuning.Tuning) *Hub {
	return NewHub(t.Observer.KeepTicks, t.Observer.SendBuffer)
}

func (h *Hub) WriteTick(entry world.TickLogEntry) error {
	b, err := json.Marshal(observerproto.NewTickMsg(entry))
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.keep > 0 {
		h.ring = append(h.ring, frame{tick: entry.Tick, b: b})
		if over := len(h.ring) - h.keep; over > 0 {
			h.ring = append(h.ring[:0], h.ring[over:]...)
		}
	}
	for _, ch := range h.subs {
		sendLatest(ch, b)
	}
	return nil
}

// Subscribers reports the number of attached clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) subscribe(sub observerproto.SubscribeMsg) (uint64, <-chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan []byte, h.buffer)
	if !sub.NoReplay {
		for _, f := range h.ring {
			if f.tick >= sub.FromTick {
				sendLatest(ch, f.b)
			}
		}
	}
	h.nextID++
	h.subs[h.nextID] = ch
	return h.nextID, ch
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}

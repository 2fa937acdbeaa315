package storage

import (
	"sync"

	"genchat/model"
)

// hub fans session snapshots out to subscribers. Each subscriber channel has
// capacity one and only ever holds the most recent snapshot.
type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan []model.Message
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[int]chan []model.Message)}
}

func (h *hub) subscribe(sessionID string) (<-chan []model.Message, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	ch := make(chan []model.Message, 1)
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[int]chan []model.Message)
	}
	h.subs[sessionID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if set, ok := h.subs[sessionID]; ok {
				if c, ok := set[id]; ok {
					delete(set, id)
					close(c)
				}
				if len(set) == 0 {
					delete(h.subs, sessionID)
				}
			}
		})
	}
	return ch, cancel
}

func (h *hub) hasSubscribers(sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[sessionID]) > 0
}

func (h *hub) publish(sessionID string, snapshot []model.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[sessionID] {
		// drop the stale snapshot, if any
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sessionID, set := range h.subs {
		for id, ch := range set {
			close(ch)
			delete(set, id)
		}
		delete(h.subs, sessionID)
	}
}

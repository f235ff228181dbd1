// Package apiserver streams one JSON event per simulator cycle over a
// WebSocket connection for external tooling: a fan-out broadcaster with
// ping/pong keepalive, scoped to a single read-only feed.
package apiserver

import "sync"

// CycleEvent is one cycle's worth of pipeline state, pushed to every
// subscriber as it happens.
type CycleEvent struct {
	Cycle       uint64        `json:"cycle"`
	PC          uint32        `json:"pc"`
	Latches     LatchSnapshot `json:"latches"`
	Committed   *Commit       `json:"committed,omitempty"`
	NewBTBEntry *BTBEntry     `json:"newBtbEntry,omitempty"`
}

// LatchSnapshot mirrors the four named pipeline latches for one cycle.
type LatchSnapshot struct {
	IFID  LatchView `json:"ifId"`
	IDEX  LatchView `json:"idEx"`
	EXMEM LatchView `json:"exMem"`
	MEMWB LatchView `json:"memWb"`
}

// LatchView is the subset of a latch worth exposing to a remote client.
type LatchView struct {
	Valid    bool   `json:"valid"`
	PC       uint32 `json:"pc"`
	Mnemonic string `json:"mnemonic"`
}

// Commit describes a writeback that retired an instruction this cycle.
type Commit struct {
	InstNum  uint64 `json:"instNum"`
	PC       uint32 `json:"pc"`
	Mnemonic string `json:"mnemonic"`
	Rd       uint32 `json:"rd"`
	Value    int32  `json:"value"`
}

// BTBEntry describes a branch-target-buffer write that happened this cycle.
type BTBEntry struct {
	PC        uint32 `json:"pc"`
	Target    uint32 `json:"target"`
	Direction bool   `json:"direction"`
}

// Broadcaster fans a stream of CycleEvents out to every subscribed client
// via a register/unregister/broadcast loop, with a single always-on event
// type instead of per-session filtering.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[*Subscription]bool
	broadcast     chan CycleEvent
	register      chan *Subscription
	unregister    chan *Subscription
	done          chan struct{}
}

// Subscription is one client's inbound event channel.
type Subscription struct {
	Channel chan CycleEvent
}

// NewBroadcaster creates and starts a broadcaster.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		subscriptions: make(map[*Subscription]bool),
		broadcast:     make(chan CycleEvent, 256),
		register:      make(chan *Subscription),
		unregister:    make(chan *Subscription),
		done:          make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broadcaster) run() {
	for {
		select {
		case sub := <-b.register:
			b.mu.Lock()
			b.subscriptions[sub] = true
			b.mu.Unlock()

		case sub := <-b.unregister:
			b.mu.Lock()
			if b.subscriptions[sub] {
				delete(b.subscriptions, sub)
				close(sub.Channel)
			}
			b.mu.Unlock()

		case event := <-b.broadcast:
			b.mu.RLock()
			for sub := range b.subscriptions {
				select {
				case sub.Channel <- event:
				default:
					// slow client, drop this cycle's event rather than block the simulator
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			b.mu.Lock()
			for sub := range b.subscriptions {
				close(sub.Channel)
			}
			b.subscriptions = make(map[*Subscription]bool)
			b.mu.Unlock()
			return
		}
	}
}

// Subscribe registers a new client channel.
func (b *Broadcaster) Subscribe() *Subscription {
	sub := &Subscription{Channel: make(chan CycleEvent, 64)}
	b.register <- sub
	return sub
}

// Unsubscribe removes a client channel.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.unregister <- sub
}

// Publish sends a cycle event to every subscriber, dropping it if the
// broadcaster's internal queue is already full.
func (b *Broadcaster) Publish(event CycleEvent) {
	select {
	case b.broadcast <- event:
	default:
	}
}

// Close shuts the broadcaster down and closes all subscriptions.
func (b *Broadcaster) Close() {
	close(b.done)
}

// SubscriptionCount reports the number of connected clients.
func (b *Broadcaster) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}

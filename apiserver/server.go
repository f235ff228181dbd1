package apiserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/lookbusy1344/riscv-pipeline/vm"
)

// Server is the optional HTTP server that exposes a live cycle-trace
// WebSocket feed for an already-running simulator.
type Server struct {
	broadcaster *Broadcaster
	mux         *http.ServeMux
	server      *http.Server
	addr        string
}

// NewServer creates a server bound to addr (e.g. ":8080").
func NewServer(addr string) *Server {
	s := &Server{
		broadcaster: NewBroadcaster(),
		mux:         http.NewServeMux(),
		addr:        addr,
	}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ws", s.HandleWebSocket)
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Start runs the HTTP server until it errors or is shut down.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Printf("apiserver listening on %s", s.addr)
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and disconnects every subscriber.
func (s *Server) Shutdown(ctx context.Context) error {
	s.broadcaster.Close()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Drive runs sim one cycle at a time, publishing a CycleEvent after each
// step, until the pipeline drains or the cycle cap is hit. It is meant to
// run on its own goroutine alongside an HTTP server serving the WebSocket
// endpoint subscribers connect to.
func (s *Server) Drive(sim *vm.Simulator) {
	prevBTB := len(sim.Predict.Entries())

	for !sim.Drained() {
		if sim.CycleLimitReached() {
			break
		}
		sim.Step()

		lat := sim.Latches()
		event := CycleEvent{
			Cycle: sim.Stats.TotalCycles,
			PC:    sim.PC,
			Latches: LatchSnapshot{
				IFID:  LatchView{Valid: lat.IFID.Valid, PC: lat.IFID.PC, Mnemonic: lat.IFID.Mnemonic},
				IDEX:  LatchView{Valid: lat.IDEX.Valid, PC: lat.IDEX.PC, Mnemonic: lat.IDEX.Mnemonic},
				EXMEM: LatchView{Valid: lat.EXMEM.Valid, PC: lat.EXMEM.PC, Mnemonic: lat.EXMEM.Mnemonic},
				MEMWB: LatchView{Valid: lat.MEMWB.Valid, PC: lat.MEMWB.PC, Mnemonic: lat.MEMWB.Mnemonic},
			},
		}

		if instNum, pc, mnemonic, rd, value, ok := sim.LastCommit(); ok {
			event.Committed = &Commit{InstNum: instNum, PC: pc, Mnemonic: mnemonic, Rd: rd, Value: value}
		}

		entries := sim.Predict.Entries()
		if len(entries) > prevBTB {
			last := entries[len(entries)-1]
			event.NewBTBEntry = &BTBEntry{PC: last.PC, Target: last.Target, Direction: last.Direction}
			prevBTB = len(entries)
		}

		s.broadcaster.Publish(event)
	}
}

// Addr returns the server's bound address, for the CLI's startup banner.
func (s *Server) Addr() string {
	return s.addr
}

// SubscriberCount reports how many WebSocket clients are currently attached.
func (s *Server) SubscriberCount() int {
	return s.broadcaster.SubscriptionCount()
}

package hook

import (
	"context"
	"log"
	"sync"

	"github.com/ayusman/physioduel/internal/exercise"
)

// queueSize is the number of pending events kept for hooks.
const queueSize = 128

type job struct {
	matchID string
	event   exercise.Event
}

// Dispatcher runs matching hooks for events on a single background worker,
// so hooks see events in order and never block the frame path.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	queue    chan job
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	closed   bool
}

// NewDispatcher creates a Dispatcher and starts its worker.
func NewDispatcher(m *Manager, e *Executor) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		manager:  m,
		executor: e,
		queue:    make(chan job, queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Notify queues events for every hook that handles them. Events are
// dropped when the queue is full.
func (d *Dispatcher) Notify(matchID string, events []exercise.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	for _, ev := range events {
		if len(d.manager.For(ev.Kind)) == 0 {
			continue
		}
		select {
		case d.queue <- job{matchID: matchID, event: ev}:
		default:
			log.Printf("Hook queue full, dropping %s event", ev.Kind)
		}
	}
}

// Close waits for queued events to be handled and stops the worker.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for j := range d.queue {
		for _, h := range d.manager.For(j.event.Kind) {
			resp, err := d.executor.Execute(d.ctx, h, &Request{MatchID: j.matchID, Event: j.event})
			if err != nil {
				log.Printf("Hook error: %v", err)
				continue
			}
			if !resp.Success {
				log.Printf("Hook %s reported failure: %s", h.Manifest.Name, resp.Error)
			}
		}
	}
}

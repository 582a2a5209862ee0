// services/events.go - Unlock Event Dispatch
package services

import (
	"log"
	"sync"
	"time"

	"vidverse/models"
)

// UnlockEvent is published after an unlock row commits. Subscribers run
// off the request path and must tolerate duplicates and drops.
type UnlockEvent struct {
	UserID      uint               `json:"user_id"`
	Achievement models.Achievement `json:"achievement"`
	UnlockedAt  time.Time          `json:"unlocked_at"`
}

type Subscriber func(UnlockEvent)

// Dispatcher fans unlock events out to subscribers from a single worker
// goroutine. Publishing never blocks: when the buffer is full the event
// is dropped and logged, since every subscriber is best-effort anyway.
type Dispatcher struct {
	mu          sync.RWMutex
	subscribers []Subscriber

	events chan UnlockEvent
	done   chan struct{}
	wg     sync.WaitGroup

	// synchronous delivers inline from Publish. Used by tests so they
	// can assert side effects without sleeping.
	synchronous bool
}

func NewDispatcher(buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		events: make(chan UnlockEvent, buffer),
		done:   make(chan struct{}),
	}
}

// NewSyncDispatcher delivers events inline, on the publishing goroutine.
func NewSyncDispatcher() *Dispatcher {
	return &Dispatcher{synchronous: true}
}

func (d *Dispatcher) Subscribe(fn Subscriber) {
	d.mu.Lock()
	d.subscribers = append(d.subscribers, fn)
	d.mu.Unlock()
}

// Start launches the delivery worker. No-op in synchronous mode.
func (d *Dispatcher) Start() {
	if d.synchronous {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case ev := <-d.events:
				d.deliver(ev)
			case <-d.done:
				// Drain whatever is already buffered before exiting.
				for {
					select {
					case ev := <-d.events:
						d.deliver(ev)
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop shuts the worker down after draining buffered events.
func (d *Dispatcher) Stop() {
	if d.synchronous {
		return
	}
	close(d.done)
	d.wg.Wait()
}

// Publish hands an event to the worker without blocking the caller.
func (d *Dispatcher) Publish(ev UnlockEvent) {
	if d.synchronous {
		d.deliver(ev)
		return
	}
	select {
	case d.events <- ev:
	default:
		log.Printf("⚠️ Unlock event buffer full, dropping event for user %d achievement %d", ev.UserID, ev.Achievement.ID)
	}
}

func (d *Dispatcher) deliver(ev UnlockEvent) {
	d.mu.RLock()
	subs := make([]Subscriber, len(d.subscribers))
	copy(subs, d.subscribers)
	d.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("⚠️ Unlock subscriber panicked: %v", r)
				}
			}()
			fn(ev)
		}()
	}
}

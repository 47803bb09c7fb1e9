// Package kb holds the in-memory store that batch and sweep drivers use to
// collect trial results. Trials are independent and may run concurrently, so
// the store is safe for concurrent writers.
package kb

import (
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/navigation-simulator/core"
)

// EventType indicates what kind of change happened in the store.
type EventType int

const (
	EventResultAdded EventType = iota
)

// Event is emitted to subscribers when a trial result lands.
type Event struct {
	Type       EventType
	Experiment string
}

// ResultStore is an in-memory, thread-safe store for experiment results,
// keyed by experiment name.
type ResultStore struct {
	mu sync.RWMutex

	results map[string]*core.ExperimentResults

	// Subscribers are keyed by id so unsubscribing one never displaces
	// another.
	subs      map[int]func(Event)
	nextSubID int
}

// NewResultStore constructs an empty store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[string]*core.ExperimentResults),
		subs:    make(map[int]func(Event)),
	}
}

// Add stores a trial result. It returns an error if the experiment name is
// already present; names are the unique key for sweeps and comparisons.
func (s *ResultStore) Add(r *core.ExperimentResults) error {
	if r == nil {
		return fmt.Errorf("result is nil")
	}
	s.mu.Lock()
	name := r.Config.Name
	if _, exists := s.results[name]; exists {
		s.mu.Unlock()
		return fmt.Errorf("result for experiment %q already exists", name)
	}
	s.results[name] = r
	event := Event{Type: EventResultAdded, Experiment: name}
	subs := make([]func(Event), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// Get returns the result for the given experiment name, or nil if absent.
func (s *ResultStore) Get(name string) *core.ExperimentResults {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results[name]
}

// Names returns the stored experiment names in sorted order.
func (s *ResultStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.results))
	for name := range s.results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored results.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Subscribe registers a callback for store events. It returns an unsubscribe
// function, which is safe to call more than once.
func (s *ResultStore) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

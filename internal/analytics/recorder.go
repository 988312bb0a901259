package analytics

import (
	"sync"
	"time"
)

type Kind string

const (
	KindGenerate Kind = "generate"
	KindEdit     Kind = "edit"
	KindDeploy   Kind = "deploy"
	KindError    Kind = "error"
)

type Event struct {
	Kind     Kind      `json:"kind"`
	Provider string    `json:"provider,omitempty"`
	Model    string    `json:"model,omitempty"`
	Path     string    `json:"path,omitempty"`
	At       time.Time `json:"at"`
}

type Snapshot struct {
	Counts map[Kind]int64 `json:"counts"`
	Recent []Event        `json:"recent"`
}

// Recorder counts events per kind for the process lifetime and keeps the
// most recent ones.
type Recorder struct {
	mu     sync.Mutex
	events *Ring[Event]
	counts map[Kind]int64
	now    func() time.Time
}

func NewRecorder(capacity int) *Recorder {
	return &Recorder{
		events: NewRing[Event](capacity),
		counts: make(map[Kind]int64),
		now:    time.Now,
	}
}

func (r *Recorder) Record(kind Kind, provider, model, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts[kind]++
	r.events.Push(Event{Kind: kind, Provider: provider, Model: model, Path: path, At: r.now().UTC()})
}

// Snapshot returns the counters and up to limit recent events, newest
// first. limit <= 0 returns all retained events.
func (r *Recorder) Snapshot(limit int) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[Kind]int64, len(r.counts))
	for k, v := range r.counts {
		counts[k] = v
	}

	items := r.events.Items()
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}
	recent := make([]Event, 0, limit)
	for i := len(items) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, items[i])
	}
	return Snapshot{Counts: counts, Recent: recent}
}

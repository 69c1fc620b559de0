// Package preference owns a shopper's filtering profile and its persistence.
package preference

import (
	"context"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/wichananm65/able-backend/internal/domain"
)

// TopicChanged is published with (key string, prefs domain.Preferences) after every mutation.
const TopicChanged = "preferences:changed"

// saveTimeout bounds a single background write.
const saveTimeout = 5 * time.Second

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Model is one session's preferences. Mutations apply immediately in memory;
// writes to the Store happen in the background and coalesce, so the last
// state always wins. Persistence failures are logged, never returned.
type Model struct {
	key   string
	store Store
	bus   evbus.Bus

	mu    sync.RWMutex
	prefs domain.Preferences

	// life guards closed so no change is queued after the writer stops
	life    sync.Mutex
	closed  bool
	pending chan struct{}
	quit    chan struct{}
	done    chan struct{}
}

type ModelOption func(*Model)

// WithEvents publishes TopicChanged on bus.
func WithEvents(bus evbus.Bus) ModelOption {
	return func(m *Model) { m.bus = bus }
}

// Open loads the preferences stored under key, falling back to defaults when
// nothing is stored or the stored blob cannot be read.
func Open(ctx context.Context, key string, store Store, opts ...ModelOption) *Model {
	m := &Model{
		key:     key,
		store:   store,
		prefs:   domain.DefaultPreferences(),
		pending: make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	blob, ok, err := store.Load(ctx, key)
	switch {
	case err != nil:
		zap.L().Warn("load preferences failed, using defaults", zap.String("key", key), zap.Error(err))
	case ok:
		if p, err := decode(blob); err != nil {
			zap.L().Warn("stored preferences unreadable, using defaults", zap.String("key", key), zap.Error(err))
		} else {
			m.prefs = p
		}
	}

	go m.persistLoop()
	return m
}

func decode(blob []byte) (domain.Preferences, error) {
	p := domain.DefaultPreferences()
	if err := json.Unmarshal(blob, &p); err != nil {
		return domain.Preferences{}, err
	}
	if p.FeatureIDs == nil {
		p.FeatureIDs = domain.Set{}
	}
	if p.ChallengeIDs == nil {
		p.ChallengeIDs = domain.Set{}
	}
	if _, ok := domain.ParseUserMode(string(p.Mode)); !ok {
		p.Mode = domain.ModeIndividual
	}
	return p, nil
}

// Snapshot returns a copy of the current preferences.
func (m *Model) Snapshot() domain.Preferences {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefs.Clone()
}

// ToggleFeature removes id when selected and adds it otherwise.
func (m *Model) ToggleFeature(id string) domain.Preferences {
	return m.mutate(func(p *domain.Preferences) {
		if p.FeatureIDs.Has(id) {
			delete(p.FeatureIDs, id)
		} else {
			p.FeatureIDs[id] = struct{}{}
		}
	})
}

// SetGender overwrites the preferred gender; nil clears it.
func (m *Model) SetGender(g *domain.Gender) domain.Preferences {
	return m.mutate(func(p *domain.Preferences) {
		if g == nil {
			p.Gender = nil
			return
		}
		v := *g
		p.Gender = &v
	})
}

// SetPriceTier overwrites the preferred price tier; nil clears it.
func (m *Model) SetPriceTier(t *domain.PriceTier) domain.Preferences {
	return m.mutate(func(p *domain.Preferences) {
		if t == nil {
			p.PriceTier = nil
			return
		}
		v := *t
		p.PriceTier = &v
	})
}

// SelectChallenge records slug and unions in its mapped features. Selecting
// the same challenge again changes nothing.
func (m *Model) SelectChallenge(slug string) domain.Preferences {
	return m.mutate(func(p *domain.Preferences) {
		p.ChallengeIDs[slug] = struct{}{}
		for _, id := range ChallengeFeatures(slug) {
			p.FeatureIDs[id] = struct{}{}
		}
	})
}

func (m *Model) SetMode(mode domain.UserMode) domain.Preferences {
	return m.mutate(func(p *domain.Preferences) { p.Mode = mode })
}

// Clear resets gender, price tier, features and challenges. The user mode
// is kept.
func (m *Model) Clear() domain.Preferences {
	return m.mutate(func(p *domain.Preferences) {
		mode := p.Mode
		*p = domain.DefaultPreferences()
		if mode != "" {
			p.Mode = mode
		}
	})
}

func (m *Model) mutate(fn func(*domain.Preferences)) domain.Preferences {
	m.mu.Lock()
	fn(&m.prefs)
	snap := m.prefs.Clone()
	m.mu.Unlock()

	m.life.Lock()
	closed := m.closed
	if !closed {
		select {
		case m.pending <- struct{}{}:
		default:
		}
	}
	m.life.Unlock()
	if closed {
		// writer stopped; a caller still holding an evicted model writes through
		m.persist()
	}
	if m.bus != nil {
		m.bus.Publish(TopicChanged, m.key, snap)
	}
	return snap
}

func (m *Model) persistLoop() {
	defer close(m.done)
	for {
		select {
		case <-m.pending:
			m.persist()
		case <-m.quit:
			select {
			case <-m.pending:
				m.persist()
			default:
			}
			return
		}
	}
}

func (m *Model) persist() {
	blob, err := json.Marshal(m.Snapshot())
	if err != nil {
		zap.L().Warn("encode preferences failed", zap.String("key", m.key), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := m.store.Save(ctx, m.key, blob); err != nil {
		zap.L().Warn("save preferences failed", zap.String("key", m.key), zap.Error(err))
	}
}

// Close writes any pending change and stops the background writer.
func (m *Model) Close() {
	m.life.Lock()
	if !m.closed {
		m.closed = true
		close(m.quit)
	}
	m.life.Unlock()
	<-m.done
}

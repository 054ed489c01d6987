package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"quote-service/internal/metrics"
	"quote-service/internal/quote/service"
)

var ErrSessionNotFound = errors.New("session not found")

type slot struct {
	mu       sync.Mutex // сериализует операции одной сессии
	sess     *service.Session
	lastSeen time.Time
}

// Store держит сессии в памяти; простаивающие дольше ttl удаляются.
type Store struct {
	mu    sync.Mutex
	items map[string]*slot
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger
}

func NewStore(ttl time.Duration, logger zerolog.Logger) *Store {
	return &Store{
		items: make(map[string]*slot),
		ttl:   ttl,
		now:   time.Now,
		log:   logger,
	}
}

// Create заводит пустую сессию и возвращает её id.
func (s *Store) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.items[id] = &slot{sess: service.NewSession(), lastSeen: s.now()}
	n := len(s.items)
	s.mu.Unlock()
	metrics.SetSessionsActive(n)
	return id
}

func (s *Store) lookup(id string) (*slot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.items[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(sl.lastSeen) > s.ttl {
		delete(s.items, id)
		metrics.SetSessionsActive(len(s.items))
		return nil, false
	}
	sl.lastSeen = now
	return sl, true
}

// With выполняет fn под замком сессии. Ошибка fn возвращается как есть.
func (s *Store) With(id string, fn func(*service.Session) error) error {
	sl, ok := s.lookup(id)
	if !ok {
		return ErrSessionNotFound
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return fn(sl.sess)
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.items, id)
	metrics.SetSessionsActive(len(s.items))
	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep удаляет просроченные сессии, возвращает их число.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, sl := range s.items {
		if now.Sub(sl.lastSeen) > s.ttl {
			delete(s.items, id)
			removed++
		}
	}
	metrics.SetSessionsActive(len(s.items))
	return removed
}

// Run периодически чистит хранилище до отмены ctx.
func (s *Store) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				s.log.Info().Int("expired", n).Int("active", s.Len()).Msg("sessions swept")
			}
		}
	}
}

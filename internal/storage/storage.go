package storage

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// storedState is the on-disk form of the preference file.
type storedState struct {
	Values            map[string]string `json:"values"`
	LastUpdatedUnixMS int64             `json:"last_updated_unix_ms"`
	CreatedAt         time.Time         `json:"created_at"`
}

type subscription struct {
	key string
	ch  chan string
}

// Store is a durable string key-value store. Every mutation rewrites the file
// while holding the lock, so writes to a key are applied in call order.
type Store struct {
	path  string
	mu    sync.RWMutex
	state storedState

	subMu sync.Mutex
	subs  map[string]subscription
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	s := &Store{path: path, subs: map[string]subscription{}}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.state = defaultState()
			return s.saveLocked()
		}
		return err
	}
	if len(b) == 0 {
		s.state = defaultState()
		return s.saveLocked()
	}

	var state storedState
	if err := json.Unmarshal(b, &state); err != nil {
		// keep the bad file for inspection and start empty
		aside := s.path + ".corrupt"
		log.Printf("preference file unreadable, starting empty: path=%s moved_to=%s err=%v", s.path, aside, err)
		if rerr := os.Rename(s.path, aside); rerr != nil {
			log.Printf("move corrupt preference file: path=%s err=%v", s.path, rerr)
		}
		s.state = defaultState()
		return s.saveLocked()
	}
	if state.Values == nil {
		state.Values = map[string]string{}
	}
	if state.CreatedAt.IsZero() {
		state.CreatedAt = time.Now().UTC()
	}
	s.state = state
	return nil
}

func defaultState() storedState {
	return storedState{
		Values:    map[string]string{},
		CreatedAt: time.Now().UTC(),
	}
}

func (s *Store) saveLocked() error {
	s.state.LastUpdatedUnixMS = time.Now().UnixMilli()
	b, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.Values[key]
	return v, ok
}

func (s *Store) Set(key, value string) error {
	return s.Update(key, func(string, bool) (string, bool) { return value, true })
}

// Update runs fn against the current value of key and stores its result.
// When fn reports false nothing is written and subscribers are not notified.
func (s *Store) Update(key string, fn func(current string, ok bool) (string, bool)) error {
	s.mu.Lock()
	cur, ok := s.state.Values[key]
	next, write := fn(cur, ok)
	if !write {
		s.mu.Unlock()
		return nil
	}
	s.state.Values[key] = next
	if err := s.saveLocked(); err != nil {
		// keep memory and disk consistent
		if ok {
			s.state.Values[key] = cur
		} else {
			delete(s.state.Values, key)
		}
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notify(key, next)
	return nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	cur, ok := s.state.Values[key]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.state.Values, key)
	if err := s.saveLocked(); err != nil {
		s.state.Values[key] = cur
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notify(key, "")
	return nil
}

func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.state.Values))
	for k, v := range s.state.Values {
		out[k] = v
	}
	return out
}

// Subscribe delivers every new value written to key. The channel holds one
// pending value; a newer write replaces an undelivered one.
func (s *Store) Subscribe(key string) (string, <-chan string) {
	id := uuid.NewString()
	ch := make(chan string, 1)
	s.subMu.Lock()
	s.subs[id] = subscription{key: key, ch: ch}
	s.subMu.Unlock()
	return id, ch
}

func (s *Store) Unsubscribe(id string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if sub, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(sub.ch)
	}
}

func (s *Store) notify(key, value string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, sub := range s.subs {
		if sub.key != key {
			continue
		}
		select {
		case sub.ch <- value:
			continue
		default:
		}
		// drop the stale pending value
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- value:
		default:
		}
	}
}

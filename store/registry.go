package store

import (
	"sync"
	"time"

	"github.com/yeremiapane/restaurant-console/utils"
)

type entry struct {
	store   *ReservationStore
	expires time.Time
	detach  func()
}

// Registry holds one ReservationStore per signed-in session, keyed by bearer token. A store is
// evicted once its token's exp claim passes; anonymous sessions are never cached.
type Registry struct {
	mu       sync.Mutex
	stores   map[string]*entry
	onCreate func(key string, s *ReservationStore) (detach func())
	now      func() time.Time
}

// NewRegistry returns an empty registry. onCreate, when not nil, runs once for every cached
// store, e.g. to attach live views to it; the function it returns runs on eviction.
func NewRegistry(onCreate func(key string, s *ReservationStore) (detach func())) *Registry {
	return &Registry{stores: make(map[string]*entry), onCreate: onCreate, now: time.Now}
}

// Get returns the session's store, creating it with newAPI on first use. An empty key gets a
// fresh store that is not kept.
func (r *Registry) Get(key string, newAPI func() ReservationAPI) *ReservationStore {
	if key == "" {
		return NewReservationStore(newAPI())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	if e, ok := r.stores[key]; ok {
		return e.store
	}

	e := &entry{store: NewReservationStore(newAPI()), expires: expiryOf(key)}
	r.stores[key] = e
	if r.onCreate != nil {
		e.detach = r.onCreate(key, e.store)
	}
	return e.store
}

// Lookup returns the session's store without creating one.
func (r *Registry) Lookup(key string) (*ReservationStore, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	e, ok := r.stores[key]
	if !ok {
		return nil, false
	}
	return e.store, true
}

// Drop forgets the session's store, e.g. on logout.
func (r *Registry) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictLocked(key)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	return len(r.stores)
}

func (r *Registry) pruneLocked() {
	now := r.now()
	for key, e := range r.stores {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			utils.InfoLogger.Debug("session token expired, dropping its reservation store")
			r.evictLocked(key)
		}
	}
}

func (r *Registry) evictLocked(key string) {
	e, ok := r.stores[key]
	if !ok {
		return
	}
	delete(r.stores, key)
	if e.detach != nil {
		e.detach()
	}
}

// expiryOf reads the exp claim of a bearer token. Tokens without one never expire here.
func expiryOf(token string) time.Time {
	claims, err := utils.ParseSessionClaims(token)
	if err != nil {
		return time.Time{}
	}
	return claims.ExpiresAt
}

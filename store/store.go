// Package store keeps the reservation list a console session works on. It holds what the API
// returned on the last load and applies each successful mutation locally instead of refetching.
package store

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
	"github.com/yeremiapane/restaurant-console/models"
	"github.com/yeremiapane/restaurant-console/utils"
)

// EventReservationsRefresh tells table-occupancy views that reservation state changed under them.
const EventReservationsRefresh = "reservations_refresh"

type Event struct {
	Type          string `json:"type"`
	ReservationID string `json:"reservationId,omitempty"`
}

// ReservationAPI is the part of the reservation gateway the store drives. Mutations return nil
// when the server confirmed without echoing the record.
type ReservationAPI interface {
	FetchAll(ctx context.Context) ([]models.Reservation, error)
	Create(ctx context.Context, in models.ReservationInput) (*models.Reservation, error)
	Update(ctx context.Context, id string, in models.ReservationInput) (*models.Reservation, error)
	Cancel(ctx context.Context, id string) (*models.Reservation, error)
	Complete(ctx context.Context, id string) (*models.Reservation, error)
	MarkNoShow(ctx context.Context, id string) (*models.Reservation, error)
	Delete(ctx context.Context, id string) error
}

type ReservationStore struct {
	api ReservationAPI

	mu           sync.RWMutex
	reservations []models.Reservation
	loaded       bool
	lastErr      error

	inFlight atomic.Int32
	mutating atomic.Bool

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

func NewReservationStore(api ReservationAPI) *ReservationStore {
	return &ReservationStore{
		api:          api,
		reservations: []models.Reservation{},
		subs:         make(map[int]func(Event)),
	}
}

// Busy reports whether any operation is in flight or a mutation is claimed.
func (s *ReservationStore) Busy() bool {
	return s.inFlight.Load() > 0 || s.mutating.Load()
}

// TryBegin claims the store for one caller-driven mutation. It fails when an operation is in
// flight or another caller holds the claim; otherwise done releases it.
func (s *ReservationStore) TryBegin() (done func(), ok bool) {
	if !s.mutating.CompareAndSwap(false, true) {
		return nil, false
	}
	if s.inFlight.Load() > 0 {
		s.mutating.Store(false)
		return nil, false
	}
	return func() { s.mutating.Store(false) }, true
}

func (s *ReservationStore) begin() func() {
	s.inFlight.Add(1)
	return func() { s.inFlight.Add(-1) }
}

// Err is the error recorded by the last operation, or nil if it succeeded.
func (s *ReservationStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *ReservationStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Snapshot returns a copy of the current collection.
func (s *ReservationStore) Snapshot() []models.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Reservation, len(s.reservations))
	copy(out, s.reservations)
	return out
}

func (s *ReservationStore) record(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// Load replaces the collection with a fresh fetch. On failure the collection becomes empty and
// the error is recorded; the store never keeps a half-loaded list.
func (s *ReservationStore) Load(ctx context.Context) error {
	return s.load(ctx, false)
}

// load fetches the collection. keep leaves the previous list in place when the fetch fails.
func (s *ReservationStore) load(ctx context.Context, keep bool) error {
	defer s.begin()()

	list, err := s.api.FetchAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		utils.ErrorLogger.Warnf("load reservations: %v", err)
		if !keep {
			s.loaded = false
			s.reservations = []models.Reservation{}
		}
		return err
	}
	s.loaded = true
	if list == nil {
		list = []models.Reservation{}
	}
	s.reservations = list
	return nil
}

// EnsureLoaded loads the collection unless a load already succeeded.
func (s *ReservationStore) EnsureLoaded(ctx context.Context) error {
	if s.Loaded() {
		return nil
	}
	return s.Load(ctx)
}

// Create prepends the created record. If the server did not return it, the collection is
// reloaded instead, since the new id is only known server side. Once the server accepted the
// create it succeeds: a failed reload is recorded in Err and the previous list stays.
func (s *ReservationStore) Create(ctx context.Context, in models.ReservationInput) (*models.Reservation, error) {
	done := s.begin()
	created, err := s.api.Create(ctx, in)
	if err != nil {
		done()
		s.record(err)
		return nil, err
	}
	if created == nil {
		done()
		utils.InfoLogger.Info("create returned no record, reloading reservations")
		_ = s.load(ctx, true)
		return nil, nil
	}
	defer done()

	s.mu.Lock()
	s.reservations = append([]models.Reservation{*created}, s.reservations...)
	s.lastErr = nil
	s.mu.Unlock()
	return created, nil
}

// Update replaces the record in place. Status and creator left out of in are taken from the held
// record, so the request carries what the list shows. Without an echo the submitted fields are
// merged into the local copy.
func (s *ReservationStore) Update(ctx context.Context, id string, in models.ReservationInput) (*models.Reservation, error) {
	defer s.begin()()

	if held, ok := s.find(id); ok {
		if in.StatusID == 0 {
			in.StatusID = int(held.StatusID)
		}
		if strings.TrimSpace(in.CreatedBy) == "" {
			in.CreatedBy = held.CreatedBy
		}
	}
	updated, err := s.api.Update(ctx, id, in)
	if err != nil {
		s.record(err)
		return nil, err
	}
	return s.replace(id, func(r models.Reservation) models.Reservation {
		if updated != nil {
			return *updated
		}
		return mergeInput(r, in)
	}), nil
}

func (s *ReservationStore) Cancel(ctx context.Context, id string) (*models.Reservation, error) {
	return s.changeStatus(ctx, id, s.api.Cancel, models.StatusCancelled)
}

func (s *ReservationStore) Complete(ctx context.Context, id string) (*models.Reservation, error) {
	return s.changeStatus(ctx, id, s.api.Complete, models.StatusCompleted)
}

func (s *ReservationStore) MarkNoShow(ctx context.Context, id string) (*models.Reservation, error) {
	return s.changeStatus(ctx, id, s.api.MarkNoShow, models.StatusNoShow)
}

func (s *ReservationStore) changeStatus(ctx context.Context, id string, call func(context.Context, string) (*models.Reservation, error), status models.ReservationStatus) (*models.Reservation, error) {
	defer s.begin()()

	changed, err := call(ctx, id)
	if err != nil {
		s.record(err)
		return nil, err
	}
	return s.replace(id, func(r models.Reservation) models.Reservation {
		if changed != nil {
			return *changed
		}
		r.StatusID = status
		return r
	}), nil
}

func (s *ReservationStore) find(id string) (models.Reservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Find(s.reservations, func(r models.Reservation) bool { return r.ID == id })
}

// replace swaps the record with the given id, keeping collection order. It returns the new
// record, or nil when the id is not held locally.
func (s *ReservationStore) replace(id string, fn func(models.Reservation) models.Reservation) *models.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil

	_, idx, found := lo.FindIndexOf(s.reservations, func(r models.Reservation) bool { return r.ID == id })
	if !found {
		utils.ErrorLogger.WithField("id", id).Warn("reservation changed on the server is not in the local list")
		return nil
	}
	next := make([]models.Reservation, len(s.reservations))
	copy(next, s.reservations)
	next[idx] = fn(next[idx])
	s.reservations = next
	return &next[idx]
}

// Delete removes the record and then notifies subscribers once.
func (s *ReservationStore) Delete(ctx context.Context, id string) error {
	done := s.begin()
	if err := s.api.Delete(ctx, id); err != nil {
		done()
		s.record(err)
		return err
	}

	s.mu.Lock()
	s.reservations = lo.Reject(s.reservations, func(r models.Reservation, _ int) bool { return r.ID == id })
	s.lastErr = nil
	s.mu.Unlock()
	done()

	s.publish(Event{Type: EventReservationsRefresh, ReservationID: id})
	return nil
}

// Subscribe registers fn for store events. The returned function removes it.
func (s *ReservationStore) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// publish calls every subscriber synchronously. Nothing is retried or acknowledged; a panicking
// subscriber is logged and skipped.
func (s *ReservationStore) publish(ev Event) {
	s.subMu.Lock()
	subs := lo.Values(s.subs)
	s.subMu.Unlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					utils.ErrorLogger.Errorf("reservation subscriber panicked: %v", r)
				}
			}()
			fn(ev)
		}()
	}
}

func mergeInput(r models.Reservation, in models.ReservationInput) models.Reservation {
	if v := strings.TrimSpace(in.TableID); v != "" {
		r.TableID = v
	}
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		name = strings.TrimSpace(strings.TrimSpace(in.FirstName) + " " + strings.TrimSpace(in.LastName))
	}
	if name != "" {
		r.CustomerName = name
	}
	if v := strings.TrimSpace(in.CustomerPhone); v != "" {
		r.CustomerPhone = v
	}
	if d, t := strings.TrimSpace(in.Date), strings.TrimSpace(in.Time); d != "" && t != "" {
		if when, ok := utils.ParseTimestamp(d + "T" + t); ok {
			r.ReservationTime = when
		}
	}
	r.SpecialRequest = strings.TrimSpace(in.SpecialRequest)
	if st := models.ReservationStatus(in.StatusID); st != models.StatusUnknown {
		r.StatusID = st
	}
	if v := strings.TrimSpace(in.CreatedBy); v != "" {
		r.CreatedBy = v
	}
	return r
}

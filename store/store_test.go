package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-console/apierrors"
	"github.com/yeremiapane/restaurant-console/models"
	"github.com/yeremiapane/restaurant-console/services"
	"github.com/yeremiapane/restaurant-console/utils"
)

// fakeAPI answers from a fixed list. echo controls whether mutations return the record.
type fakeAPI struct {
	mu      sync.Mutex
	list    []models.Reservation
	loadErr error
	mutErr  error
	echo    bool
	block   chan struct{}
	calls   []string
	nextID  int
}

func (f *fakeAPI) note(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) FetchAll(ctx context.Context) ([]models.Reservation, error) {
	f.note("fetchAll")
	if f.block != nil {
		<-f.block
	}
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]models.Reservation(nil), f.list...), nil
}

func (f *fakeAPI) Create(ctx context.Context, in models.ReservationInput) (*models.Reservation, error) {
	f.note("create")
	if f.mutErr != nil {
		return nil, f.mutErr
	}
	if !f.echo {
		return nil, nil
	}
	f.nextID++
	return &models.Reservation{ID: "new", TableID: in.TableID, CustomerName: in.CustomerName, StatusID: models.StatusPending}, nil
}

func (f *fakeAPI) Update(ctx context.Context, id string, in models.ReservationInput) (*models.Reservation, error) {
	f.note("update")
	if f.mutErr != nil {
		return nil, f.mutErr
	}
	if !f.echo {
		return nil, nil
	}
	return &models.Reservation{ID: id, TableID: in.TableID, CustomerName: "from server"}, nil
}

func (f *fakeAPI) status(id string, st models.ReservationStatus) (*models.Reservation, error) {
	if f.mutErr != nil {
		return nil, f.mutErr
	}
	if !f.echo {
		return nil, nil
	}
	return &models.Reservation{ID: id, CustomerName: "from server", StatusID: st}, nil
}

func (f *fakeAPI) Cancel(ctx context.Context, id string) (*models.Reservation, error) {
	f.note("cancel")
	return f.status(id, models.StatusCancelled)
}

func (f *fakeAPI) Complete(ctx context.Context, id string) (*models.Reservation, error) {
	f.note("complete")
	return f.status(id, models.StatusCompleted)
}

func (f *fakeAPI) MarkNoShow(ctx context.Context, id string) (*models.Reservation, error) {
	f.note("noShow")
	return f.status(id, models.StatusNoShow)
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	f.note("delete")
	return f.mutErr
}

func seeded() []models.Reservation {
	return []models.Reservation{
		{ID: "42", TableID: "T1", CustomerName: "Budi", CustomerPhone: "0812", StatusID: models.StatusPending, CreatedBy: "1"},
		{ID: "7", TableID: "T2", CustomerName: "Sari", CustomerPhone: "0813", StatusID: models.StatusConfirmed, CreatedBy: "1"},
	}
}

func storeIDs(s *ReservationStore) []string {
	return lo.Map(s.Snapshot(), func(r models.Reservation, _ int) string { return r.ID })
}

func loadedStore(t *testing.T, api *fakeAPI) *ReservationStore {
	t.Helper()
	s := NewReservationStore(api)
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestDeleteRemovesAndNotifiesOnce(t *testing.T) {
	s := loadedStore(t, &fakeAPI{list: seeded()})

	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })

	require.NoError(t, s.Delete(context.Background(), "42"))

	assert.Equal(t, []string{"7"}, storeIDs(s))
	require.Len(t, events, 1)
	assert.Equal(t, EventReservationsRefresh, events[0].Type)
	assert.Equal(t, "42", events[0].ReservationID)
	assert.False(t, s.Busy())
}

func TestDeleteFailureKeepsState(t *testing.T) {
	api := &fakeAPI{list: seeded()}
	s := loadedStore(t, api)
	notified := 0
	s.Subscribe(func(Event) { notified++ })

	api.mutErr = apierrors.Remote("reservations.delete", 404, "reservation not found")
	err := s.Delete(context.Background(), "42")

	require.Error(t, err)
	assert.Equal(t, []string{"42", "7"}, storeIDs(s))
	assert.Zero(t, notified)
	assert.Equal(t, err, s.Err())
}

func TestUnsubscribeAndPanickingSubscriber(t *testing.T) {
	s := loadedStore(t, &fakeAPI{list: seeded()})

	s.Subscribe(func(Event) { panic("view went away") })
	got := 0
	unsubscribe := s.Subscribe(func(Event) { got++ })

	require.NoError(t, s.Delete(context.Background(), "42"))
	assert.Equal(t, 1, got)

	unsubscribe()
	require.NoError(t, s.Delete(context.Background(), "7"))
	assert.Equal(t, 1, got)
}

func TestLoadFailureDegradesToEmpty(t *testing.T) {
	api := &fakeAPI{list: seeded()}
	s := loadedStore(t, api)
	require.Len(t, s.Snapshot(), 2)

	api.loadErr = errors.New("server unreachable")
	err := s.Load(context.Background())

	require.Error(t, err)
	assert.Empty(t, s.Snapshot())
	assert.NotNil(t, s.Snapshot())
	assert.EqualError(t, s.Err(), "server unreachable")
	assert.False(t, s.Loaded(), "a failed load is retried by EnsureLoaded")
}

func TestCreatePrepends(t *testing.T) {
	api := &fakeAPI{list: seeded(), echo: true}
	s := loadedStore(t, api)

	r, err := s.Create(context.Background(), models.ReservationInput{TableID: "T3", CustomerName: "Dewi"})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, []string{"new", "42", "7"}, storeIDs(s))
	assert.Equal(t, []string{"fetchAll", "create"}, api.calls)
}

func TestCreateWithoutEchoReloads(t *testing.T) {
	api := &fakeAPI{list: seeded()}
	s := loadedStore(t, api)

	api.list = append([]models.Reservation{{ID: "99", TableID: "T9"}}, api.list...)
	r, err := s.Create(context.Background(), models.ReservationInput{TableID: "T9"})

	require.NoError(t, err)
	assert.Nil(t, r)
	assert.Equal(t, []string{"99", "42", "7"}, storeIDs(s))
	assert.Equal(t, []string{"fetchAll", "create", "fetchAll"}, api.calls)
}

func TestStatusChangesReplaceInPlace(t *testing.T) {
	tests := []struct {
		name string
		echo bool
		do   func(*ReservationStore) (*models.Reservation, error)
		want models.ReservationStatus
	}{
		{name: "cancel echoed", echo: true, do: func(s *ReservationStore) (*models.Reservation, error) { return s.Cancel(context.Background(), "42") }, want: models.StatusCancelled},
		{name: "cancel plain text", do: func(s *ReservationStore) (*models.Reservation, error) { return s.Cancel(context.Background(), "42") }, want: models.StatusCancelled},
		{name: "complete", do: func(s *ReservationStore) (*models.Reservation, error) { return s.Complete(context.Background(), "42") }, want: models.StatusCompleted},
		{name: "no-show", echo: true, do: func(s *ReservationStore) (*models.Reservation, error) { return s.MarkNoShow(context.Background(), "42") }, want: models.StatusNoShow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loadedStore(t, &fakeAPI{list: seeded(), echo: tt.echo})

			r, err := tt.do(s)
			require.NoError(t, err)
			require.NotNil(t, r)

			snap := s.Snapshot()
			assert.Equal(t, []string{"42", "7"}, storeIDs(s))
			assert.Equal(t, tt.want, snap[0].StatusID)
			assert.Equal(t, models.StatusConfirmed, snap[1].StatusID)
			if !tt.echo {
				assert.Equal(t, "Budi", snap[0].CustomerName, "local change keeps the other fields")
			}
		})
	}
}

func TestUpdateMergesWithoutEcho(t *testing.T) {
	s := loadedStore(t, &fakeAPI{list: seeded()})

	r, err := s.Update(context.Background(), "7", models.ReservationInput{
		CustomerName: "Sari Dewi", Date: "2024-06-02", Time: "20:00", SpecialRequest: "birthday",
	})
	require.NoError(t, err)
	require.NotNil(t, r)

	snap := s.Snapshot()
	assert.Equal(t, "Sari Dewi", snap[1].CustomerName)
	assert.Equal(t, "T2", snap[1].TableID)
	assert.Equal(t, "birthday", snap[1].SpecialRequest)
	assert.Equal(t, time.Date(2024, 6, 2, 20, 0, 0, 0, time.UTC), snap[1].ReservationTime)
}

func TestUpdateUsesEcho(t *testing.T) {
	s := loadedStore(t, &fakeAPI{list: seeded(), echo: true})

	_, err := s.Update(context.Background(), "7", models.ReservationInput{TableID: "T5"})
	require.NoError(t, err)
	assert.Equal(t, "from server", s.Snapshot()[1].CustomerName)
}

func TestBusyDuringLoad(t *testing.T) {
	api := &fakeAPI{list: seeded(), block: make(chan struct{})}
	s := NewReservationStore(api)

	done := make(chan error)
	go func() { done <- s.Load(context.Background()) }()

	require.Eventually(t, s.Busy, time.Second, 5*time.Millisecond)
	close(api.block)
	require.NoError(t, <-done)
	assert.False(t, s.Busy())
}

func TestRegistry(t *testing.T) {
	var hooked []string
	r := NewRegistry(func(key string, _ *ReservationStore) func() {
		hooked = append(hooked, key)
		return nil
	})
	created := 0
	newAPI := func() ReservationAPI {
		created++
		return &fakeAPI{}
	}

	a := r.Get("token-a", newAPI)
	assert.Same(t, a, r.Get("token-a", newAPI))
	assert.NotSame(t, a, r.Get("token-b", newAPI))
	assert.Equal(t, 2, created)
	assert.Equal(t, []string{"token-a", "token-b"}, hooked)

	r.Drop("token-a")
	_, ok := r.Lookup("token-a")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryDoesNotKeepAnonymousStores(t *testing.T) {
	hooked := 0
	r := NewRegistry(func(string, *ReservationStore) func() {
		hooked++
		return nil
	})
	newAPI := func() ReservationAPI { return &fakeAPI{} }

	a := r.Get("", newAPI)
	b := r.Get("", newAPI)

	assert.NotSame(t, a, b)
	assert.Zero(t, r.Len())
	assert.Zero(t, hooked)
	_, ok := r.Lookup("")
	assert.False(t, ok)
}

func TestRegistryEvictsExpiredSessions(t *testing.T) {
	token, err := utils.GenerateToken([]byte("secret"), 3, "chef@resto.id", "chef", time.Hour)
	require.NoError(t, err)

	detached := 0
	r := NewRegistry(func(string, *ReservationStore) func() {
		return func() { detached++ }
	})
	newAPI := func() ReservationAPI { return &fakeAPI{} }

	first := r.Get(token, newAPI)
	assert.Same(t, first, r.Get(token, newAPI))
	assert.Equal(t, 1, r.Len())

	r.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, ok := r.Lookup(token)
	assert.False(t, ok)
	assert.Equal(t, 1, detached)
	assert.Zero(t, r.Len())

	r.now = time.Now
	assert.NotSame(t, first, r.Get(token, newAPI))

	r.Drop(token)
	assert.Equal(t, 2, detached)
}

func TestTryBeginAdmitsOneMutation(t *testing.T) {
	s := NewReservationStore(&fakeAPI{})

	var wg sync.WaitGroup
	var admitted atomic.Int32
	start := make(chan struct{})
	release := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if done, ok := s.TryBegin(); ok {
				admitted.Add(1)
				<-release
				done()
			}
		}()
	}
	close(start)
	require.Eventually(t, func() bool { return admitted.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, s.Busy())
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, admitted.Load())
	assert.False(t, s.Busy())
	done, ok := s.TryBegin()
	require.True(t, ok)
	done()
}

func TestTryBeginRefusedWhileLoading(t *testing.T) {
	api := &fakeAPI{list: seeded(), block: make(chan struct{})}
	s := NewReservationStore(api)

	loaded := make(chan error)
	go func() { loaded <- s.Load(context.Background()) }()
	require.Eventually(t, s.Busy, time.Second, 5*time.Millisecond)

	_, ok := s.TryBegin()
	assert.False(t, ok)

	close(api.block)
	require.NoError(t, <-loaded)
	done, ok := s.TryBegin()
	require.True(t, ok)
	done()
}

func TestCreateSucceedsWhenReloadFails(t *testing.T) {
	api := &fakeAPI{list: seeded()}
	s := loadedStore(t, api)

	api.loadErr = errors.New("network blip")
	r, err := s.Create(context.Background(), models.ReservationInput{TableID: "T9"})

	require.NoError(t, err, "the server accepted the reservation")
	assert.Nil(t, r)
	assert.Equal(t, []string{"42", "7"}, storeIDs(s))
	assert.Equal(t, []string{"fetchAll", "create", "fetchAll"}, api.calls)
	assert.EqualError(t, s.Err(), "network blip")
	assert.True(t, s.Loaded())
	assert.False(t, s.Busy())
}

// plainTextAPI answers the list as JSON and every mutation with a text confirmation, recording
// the last body it was sent.
func plainTextAPI(t *testing.T, list string) (*services.ReservationService, func() map[string]interface{}) {
	t.Helper()
	var mu sync.Mutex
	var sent map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(list))
			return
		}
		mu.Lock()
		sent = nil
		_ = json.NewDecoder(r.Body).Decode(&sent)
		mu.Unlock()
		_, _ = w.Write([]byte("Reservation updated"))
	}))
	t.Cleanup(server.Close)

	client := services.NewClient(services.ClientConfig{BaseURL: server.URL, BasePath: "/api", HTTPClient: server.Client()})
	svc := services.NewReservationService(client.WithSession(services.Session{Token: "t", UserID: "9"}))
	return svc, func() map[string]interface{} {
		mu.Lock()
		defer mu.Unlock()
		return sent
	}
}

func TestUpdateKeepsStatusAndCreatorOnServerAndLocally(t *testing.T) {
	svc, lastSent := plainTextAPI(t, `[{"id":42,"tableId":"T1","customerName":"Budi","customerPhone":"0812","reservationTime":"2024-06-01T19:30:00","statusId":2,"createdBy":"1"}]`)
	s := NewReservationStore(svc)
	require.NoError(t, s.Load(context.Background()))

	tests := []struct {
		name        string
		in          models.ReservationInput
		wantStatus  models.ReservationStatus
		wantCreator string
	}{
		{
			name:        "phone only",
			in:          models.ReservationInput{TableID: "T1", CustomerName: "Budi", CustomerPhone: "0899", Date: "2024-06-01", Time: "19:30"},
			wantStatus:  models.StatusConfirmed,
			wantCreator: "1",
		},
		{
			name:        "explicit status",
			in:          models.ReservationInput{TableID: "T1", CustomerName: "Budi", CustomerPhone: "0899", Date: "2024-06-01", Time: "19:30", StatusID: int(models.StatusCompleted)},
			wantStatus:  models.StatusCompleted,
			wantCreator: "1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := s.Update(context.Background(), "42", tt.in)
			require.NoError(t, err)
			require.NotNil(t, r)

			sent := lastSent()
			assert.Equal(t, float64(tt.wantStatus), sent["statusId"])
			assert.Equal(t, tt.wantCreator, sent["createdBy"])
			assert.Equal(t, "0899", sent["customerPhone"])

			local := s.Snapshot()[0]
			assert.Equal(t, tt.wantStatus, local.StatusID)
			assert.Equal(t, tt.wantCreator, local.CreatedBy)
			assert.Equal(t, "0899", local.CustomerPhone)
		})
	}
}

package serverstate

import (
	"testing"

	"github.com/rs/zerolog"

	"modelsync/pkg/types"
)

func newStore() *Store { return New(zerolog.Nop()) }

func running(id string, at int64) *types.ServerEvent {
	return &types.ServerEvent{Kind: types.EventRunning, ModelID: id, UpdatedAt: at}
}

func TestIngestRunning(t *testing.T) {
	s := newStore()
	s.Ingest(&types.ServerEvent{
		Kind: types.EventRunning, ModelID: "m1", ModelName: "Model One",
		Port: 8100, UpdatedAt: 100,
	})
	st, ok := s.Get("m1")
	if !ok {
		t.Fatal("expected entry")
	}
	if st.Status != types.ServerRunning || st.Port != 8100 || st.ModelName != "Model One" {
		t.Fatalf("state = %+v", st)
	}
	if st.Health == nil || st.Health.Status != types.HealthHealthy {
		t.Fatalf("Health = %+v", st.Health)
	}
	if !s.IsRunning("m1") {
		t.Fatal("IsRunning = false")
	}
}

func TestStaleEventRejected(t *testing.T) {
	s := newStore()
	s.Ingest(running("m1", 200))
	s.Ingest(&types.ServerEvent{Kind: types.EventStopped, ModelID: "m1", UpdatedAt: 150})
	if st, _ := s.Get("m1"); st.Status != types.ServerRunning {
		t.Fatalf("stale stop applied: %+v", st)
	}
	// Equal timestamps are accepted, last applied wins.
	s.Ingest(&types.ServerEvent{Kind: types.EventStopped, ModelID: "m1", UpdatedAt: 200})
	if st, _ := s.Get("m1"); st.Status != types.ServerStopped {
		t.Fatalf("tie rejected: %+v", st)
	}
}

func TestOrderingIndependence(t *testing.T) {
	// The same events in any order must converge on the newest write.
	evs := []*types.ServerEvent{
		running("m1", 100),
		{Kind: types.EventStopping, ModelID: "m1", UpdatedAt: 200},
		{Kind: types.EventStopped, ModelID: "m1", UpdatedAt: 300},
	}
	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}, {2, 0, 1}}
	for _, order := range orders {
		s := newStore()
		for _, i := range order {
			s.Ingest(evs[i])
		}
		st, ok := s.Get("m1")
		if !ok || st.Status != types.ServerStopped || st.UpdatedAt != 300 {
			t.Fatalf("order %v: state = %+v", order, st)
		}
	}
}

func TestSnapshotMergesWithoutDeleting(t *testing.T) {
	s := newStore()
	s.Ingest(running("old", 100))
	s.Ingest(&types.ServerEvent{
		Kind: types.EventSnapshot,
		Servers: []types.ServerState{
			{ModelID: "new", Status: types.ServerRunning, UpdatedAt: 200},
		},
	})
	if _, ok := s.Get("old"); !ok {
		t.Fatal("snapshot deleted an absent entry")
	}
	if _, ok := s.Get("new"); !ok {
		t.Fatal("snapshot entry missing")
	}
	if n := len(s.GetAll()); n != 2 {
		t.Fatalf("len(GetAll) = %d", n)
	}
}

func TestSnapshotStaleEntrySkipped(t *testing.T) {
	s := newStore()
	s.Ingest(&types.ServerEvent{Kind: types.EventCrashed, ModelID: "m1", UpdatedAt: 500})
	s.Ingest(&types.ServerEvent{
		Kind: types.EventSnapshot,
		Servers: []types.ServerState{
			{ModelID: "m1", Status: types.ServerRunning, UpdatedAt: 400},
		},
	})
	if st, _ := s.Get("m1"); st.Status != types.ServerCrashed {
		t.Fatalf("lagging snapshot resurrected a crashed server: %+v", st)
	}
}

func TestHealthNeverCreatesEntry(t *testing.T) {
	s := newStore()
	s.Ingest(&types.ServerEvent{
		Kind: types.EventHealthChanged, ModelID: "ghost", UpdatedAt: 100,
		Health: &types.HealthStatus{Status: types.HealthUnreachable, LastError: "refused"},
	})
	if _, ok := s.Get("ghost"); ok {
		t.Fatal("health event created an entry")
	}
}

func TestHealthUpdatesExisting(t *testing.T) {
	s := newStore()
	s.Ingest(running("m1", 100))
	s.Ingest(&types.ServerEvent{
		Kind: types.EventHealthChanged, ModelID: "m1", UpdatedAt: 150,
		Health: &types.HealthStatus{Status: types.HealthDegraded, Reason: "slow"},
	})
	st, _ := s.Get("m1")
	if st.Health == nil || st.Health.Status != types.HealthDegraded || st.Health.Reason != "slow" {
		t.Fatalf("Health = %+v", st.Health)
	}
	// Stale health is dropped.
	s.Ingest(&types.ServerEvent{
		Kind: types.EventHealthChanged, ModelID: "m1", UpdatedAt: 120,
		Health: &types.HealthStatus{Status: types.HealthHealthy},
	})
	if st, _ := s.Get("m1"); st.Health.Status != types.HealthDegraded {
		t.Fatalf("stale health applied: %+v", st.Health)
	}
}

func TestLifecycleClearsHealthRunningResets(t *testing.T) {
	s := newStore()
	s.Ingest(running("m1", 100))
	s.Ingest(&types.ServerEvent{
		Kind: types.EventHealthChanged, ModelID: "m1", UpdatedAt: 110,
		Health: &types.HealthStatus{Status: types.HealthUnreachable},
	})
	s.Ingest(&types.ServerEvent{Kind: types.EventStopping, ModelID: "m1", UpdatedAt: 120})
	if st, _ := s.Get("m1"); st.Health != nil {
		t.Fatalf("stopping kept health %+v", st.Health)
	}
	s.Ingest(running("m1", 130))
	if st, _ := s.Get("m1"); st.Health == nil || st.Health.Status != types.HealthHealthy {
		t.Fatalf("restart did not reset health: %+v", st.Health)
	}
}

func TestIsRunningExact(t *testing.T) {
	s := newStore()
	s.Ingest(&types.ServerEvent{Kind: types.EventStopping, ModelID: "m1", UpdatedAt: 100})
	if s.IsRunning("m1") {
		t.Fatal("stopping counted as running")
	}
	if s.IsRunning("absent") {
		t.Fatal("absent counted as running")
	}
}

func TestSubscribeOneNotificationPerEvent(t *testing.T) {
	s := newStore()
	var calls int
	unsub := s.Subscribe(func() { calls++ })

	s.Ingest(&types.ServerEvent{
		Kind: types.EventSnapshot,
		Servers: []types.ServerState{
			{ModelID: "a", Status: types.ServerRunning, UpdatedAt: 1},
			{ModelID: "b", Status: types.ServerRunning, UpdatedAt: 1},
			{ModelID: "c", Status: types.ServerRunning, UpdatedAt: 1},
		},
	})
	if calls != 1 {
		t.Fatalf("snapshot fanned out %d notifications", calls)
	}

	// A fully rejected event must not notify.
	s.Ingest(&types.ServerEvent{Kind: types.EventStopped, ModelID: "a", UpdatedAt: 0})
	if calls != 1 {
		t.Fatalf("rejected event notified, calls = %d", calls)
	}

	unsub()
	s.Ingest(running("d", 10))
	if calls != 1 {
		t.Fatalf("unsubscribed listener called, calls = %d", calls)
	}
}

func TestGetAllReturnsCopy(t *testing.T) {
	s := newStore()
	s.Ingest(running("m1", 100))
	all := s.GetAll()
	delete(all, "m1")
	if _, ok := s.Get("m1"); !ok {
		t.Fatal("mutating GetAll result affected the store")
	}
}

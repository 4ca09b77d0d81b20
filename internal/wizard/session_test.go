package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/checkout/internal/persistence"
	"github.com/petrijr/checkout/pkg/api"
)

func TestNewSession_StartsAtInitialState(t *testing.T) {
	t.Parallel()

	s, err := NewSession()
	require.NoError(t, err)
	require.NotEmpty(t, s.ID())

	state := s.State()
	require.Equal(t, 1, state.Step)
	require.False(t, state.IsLoading)
	require.Nil(t, state.Err)
}

func TestNewSession_WithIDOverride(t *testing.T) {
	t.Parallel()

	s, err := NewSession(WithID("sess-fixed"))
	require.NoError(t, err)
	require.Equal(t, "sess-fixed", s.ID())
}

func TestDispatch_AdvancesState(t *testing.T) {
	t.Parallel()

	s, err := NewSession()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Dispatch(ctx, api.SetPaymentDetails{Patch: api.PaymentDetailsPatch{
		CardNumber: api.Ptr("4242424242424242"),
	}}))
	require.NoError(t, s.Dispatch(ctx, api.SetStep{Step: 2}))

	state := s.State()
	require.Equal(t, 2, state.Step)
	require.Equal(t, "4242424242424242", state.Payment.CardNumber)
}

func TestDispatch_RejectionLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	s, err := NewSession()
	require.NoError(t, err)

	err = s.Dispatch(context.Background(), api.SetStep{Step: 0})
	require.Error(t, err)
	require.Equal(t, 1, s.State().Step)
}

func TestDispatch_PersistsEveryChange(t *testing.T) {
	t.Parallel()

	store := persistence.NewInMemoryStore()
	s, err := NewSession(WithStore(store))
	require.NoError(t, err)

	// Creation already persisted the initial state.
	rec, err := store.GetSession(s.ID())
	require.NoError(t, err)
	require.Equal(t, 1, rec.State.Step)

	require.NoError(t, s.Dispatch(context.Background(), api.SetStep{Step: 3}))

	rec, err = store.GetSession(s.ID())
	require.NoError(t, err)
	require.Equal(t, 3, rec.State.Step)
}

func TestDispatch_NotifiesObserverAndSubscribers(t *testing.T) {
	t.Parallel()

	var metrics api.BasicMetrics
	s, err := NewSession(WithObserver(&metrics))
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []api.WizardState
	s.Subscribe(func(st api.WizardState) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})

	ctx := context.Background()
	require.NoError(t, s.Dispatch(ctx, api.SetStep{Step: 2}))
	require.Error(t, s.Dispatch(ctx, api.SetStep{Step: -1}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 1, "rejected dispatch must not notify subscribers")
	require.Equal(t, 2, seen[0].Step)

	snap := metrics.Snapshot()
	require.EqualValues(t, 2, snap.Dispatches)
	require.EqualValues(t, 1, snap.DispatchesRejected)
}

func TestDispatch_ConcurrentDispatchesSerialized(t *testing.T) {
	t.Parallel()

	s, err := NewSession()
	require.NoError(t, err)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Dispatch(ctx, api.SetStep{Step: 1 + i%4})
			_ = s.Dispatch(ctx, api.SetLoading{Loading: i%2 == 0})
		}(i)
	}
	wg.Wait()

	// Any interleaving is fine as long as the final state is one that
	// some serial order of the dispatches could have produced.
	state := s.State()
	require.GreaterOrEqual(t, state.Step, 1)
	require.LessOrEqual(t, state.Step, 4)
}

func TestRestore_ResumesWhereLeftOff(t *testing.T) {
	t.Parallel()

	store := persistence.NewInMemoryStore()
	orig, err := NewSession(WithStore(store))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, orig.Dispatch(ctx, api.SetBillingDetails{Patch: api.BillingDetailsPatch{
		City: api.Ptr("Helsinki"),
	}}))
	require.NoError(t, orig.Dispatch(ctx, api.SetStep{Step: 2}))

	resumed, err := Restore(store, orig.ID())
	require.NoError(t, err)
	require.Equal(t, orig.ID(), resumed.ID())
	require.Equal(t, 2, resumed.State().Step)
	require.Equal(t, "Helsinki", resumed.State().Billing.City)

	// The resumed session keeps persisting.
	require.NoError(t, resumed.Dispatch(ctx, api.SetStep{Step: 3}))
	rec, err := store.GetSession(orig.ID())
	require.NoError(t, err)
	require.Equal(t, 3, rec.State.Step)
}

func TestRestore_UnknownSession(t *testing.T) {
	t.Parallel()

	store := persistence.NewInMemoryStore()
	_, err := Restore(store, "no-such-session")
	require.ErrorIs(t, err, persistence.ErrSessionNotFound)
}

func TestSessionContextHelpers(t *testing.T) {
	t.Parallel()

	s, err := NewSession()
	require.NoError(t, err)

	ctx := WithSession(context.Background(), s)
	got, ok := SessionFromContext(ctx)
	require.True(t, ok)
	require.Same(t, s, got)

	_, ok = SessionFromContext(context.Background())
	require.False(t, ok)
}

// failingStore rejects updates to exercise the persistence error path.
type failingStore struct {
	persistence.SessionStore
	updateErr error
}

func (f *failingStore) UpdateSession(rec *persistence.SessionRecord) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.SessionStore.UpdateSession(rec)
}

func TestDispatch_StoreFailureSurfacedButStateKept(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	store := &failingStore{SessionStore: persistence.NewInMemoryStore(), updateErr: boom}

	s, err := NewSession(WithStore(store))
	require.NoError(t, err)

	err = s.Dispatch(context.Background(), api.SetStep{Step: 2})
	require.ErrorIs(t, err, boom)

	// The in-memory state advanced; only persistence failed.
	require.Equal(t, 2, s.State().Step)
}

package destination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/gezi-ai/internal/types"
)

var (
	// ErrLookupNotFound is returned for unknown or expired lookup IDs.
	ErrLookupNotFound = errors.New("lookup not found")
	// ErrIllegalTransition is returned when a lookup would leave its state machine.
	ErrIllegalTransition = errors.New("illegal lookup state transition")
)

// Aggregator is the part of Service a lookup runs. A nil error always comes with a non-nil record.
type Aggregator interface {
	Aggregate(ctx context.Context, place string) (*types.DestinationRecord, error)
}

// LookupStore keeps lookups in memory for a fixed TTL. Transitions are serialized so a lookup
// only moves along idle -> loading -> {success, error}.
type LookupStore struct {
	mu    sync.Mutex
	store *cache.Cache
	ttl   time.Duration
}

func NewLookupStore(ttl time.Duration) *LookupStore {
	return &LookupStore{
		store: cache.New(ttl, ttl),
		ttl:   ttl,
	}
}

// Create stores a new lookup for place in the idle state.
func (s *LookupStore) Create(place string) types.Lookup {
	lk := types.Lookup{
		ID:        uuid.New(),
		Place:     place,
		State:     types.LookupIdle,
		StartedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.store.Set(lk.ID.String(), lk, s.ttl)
	s.mu.Unlock()
	return lk
}

func (s *LookupStore) Get(id uuid.UUID) (types.Lookup, error) {
	v, found := s.store.Get(id.String())
	if !found {
		return types.Lookup{}, ErrLookupNotFound
	}
	return v.(types.Lookup), nil
}

// Transition moves lookup id to next, letting mutate fill in the result fields.
func (s *LookupStore) Transition(id uuid.UUID, next types.LookupState, mutate func(*types.Lookup)) (types.Lookup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, found := s.store.Get(id.String())
	if !found {
		return types.Lookup{}, ErrLookupNotFound
	}
	lk := v.(types.Lookup)
	if !lk.State.CanTransition(next) {
		return lk, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, lk.State, next)
	}
	lk.State = next
	if next.Terminal() {
		now := time.Now().UTC()
		lk.FinishedAt = &now
	}
	if mutate != nil {
		mutate(&lk)
	}
	s.store.Set(id.String(), lk, s.ttl)
	return lk, nil
}

// Lookups runs aggregations in the background and tracks them in a LookupStore.
type Lookups struct {
	logger     *slog.Logger
	aggregator Aggregator
	store      *LookupStore
	timeout    time.Duration
	wg         sync.WaitGroup
}

func NewLookups(aggregator Aggregator, store *LookupStore, timeout time.Duration, logger *slog.Logger) *Lookups {
	return &Lookups{
		logger:     logger,
		aggregator: aggregator,
		store:      store,
		timeout:    timeout,
	}
}

// StartLookup records a lookup for place, moves it to loading and aggregates in the background.
// The background work is detached from ctx cancellation but keeps its values.
func (lk *Lookups) StartLookup(ctx context.Context, place string) (types.Lookup, error) {
	created := lk.store.Create(place)
	loading, err := lk.store.Transition(created.ID, types.LookupLoading, nil)
	if err != nil {
		return types.Lookup{}, err
	}

	bg := context.WithoutCancel(ctx)
	var cancel context.CancelFunc = func() {}
	if lk.timeout > 0 {
		bg, cancel = context.WithTimeout(bg, lk.timeout)
	}

	lk.wg.Add(1)
	go func() {
		defer lk.wg.Done()
		defer cancel()
		lk.run(bg, loading.ID, place)
	}()

	return loading, nil
}

func (lk *Lookups) run(ctx context.Context, id uuid.UUID, place string) {
	l := lk.logger.With(slog.String("lookup_id", id.String()), slog.String("place", place))

	record, err := func() (rec *types.DestinationRecord, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("aggregation panicked: %v", r)
			}
		}()
		return lk.aggregator.Aggregate(ctx, place)
	}()

	if err != nil {
		l.ErrorContext(ctx, "Lookup failed", slog.Any("error", err))
		if _, terr := lk.store.Transition(id, types.LookupError, func(x *types.Lookup) {
			x.Error = err.Error()
		}); terr != nil {
			l.ErrorContext(ctx, "Failed to record lookup failure", slog.Any("error", terr))
		}
		return
	}

	if _, terr := lk.store.Transition(id, types.LookupSuccess, func(x *types.Lookup) {
		x.Record = record
	}); terr != nil {
		l.ErrorContext(ctx, "Failed to record lookup result", slog.Any("error", terr))
		return
	}
	l.InfoContext(ctx, "Lookup finished")
}

// GetLookup returns the current state of lookup id.
func (lk *Lookups) GetLookup(id uuid.UUID) (types.Lookup, error) {
	return lk.store.Get(id)
}

// Wait blocks until every background lookup has finished.
func (lk *Lookups) Wait() {
	lk.wg.Wait()
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"trainwise/fitness-app/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type planView struct {
	Title string `json:"title"`
	Likes int    `json:"likes"`
}

func TestKey_StableParamOrder(t *testing.T) {
	page := 2
	a := NewKey(FamilyExercises, "list", map[string]any{"page": 2, "limit": 20, "search": "squat"})
	b := NewKey(FamilyExercises, "list", map[string]any{"search": "squat", "limit": 20, "page": &page})

	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, "exercises:list:limit=20&page=2&search=squat", a.String())
}

func TestKey_SkipsNilAndPrintsHex(t *testing.T) {
	id := primitive.NewObjectID()
	var missing *primitive.ObjectID
	k := NewKey(FamilyPlans, "detail", map[string]any{"id": id, "team": missing, "x": nil})
	assert.Equal(t, "plans:detail:id="+id.Hex(), k.String())
}

func TestRemember_CachesUntilInvalidated(t *testing.T) {
	m := metrics.NewTestManager()
	qc := NewQueryCache(1, time.Minute, nil, m)
	ctx := context.Background()
	key := NewKey(FamilyPlans, "detail", map[string]any{"id": "p1"})

	calls := 0
	fetch := func(ctx context.Context) (*planView, error) {
		calls++
		return &planView{Title: "Base block", Likes: calls}, nil
	}

	first, err := Remember(ctx, qc, key, 0, fetch)
	require.NoError(t, err)
	second, err := Remember(ctx, qc, key, 0, fetch)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterCacheHits.WithLabelValues("plans")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterCacheMisses.WithLabelValues("plans")))

	// a session log mutation makes plan summaries stale
	dropped := qc.Invalidate(FamilySessionLogs)
	assert.Equal(t, 1, dropped)

	third, err := Remember(ctx, qc, key, 0, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, third.Likes)
}

func TestRemember_ErrorsAreNotCached(t *testing.T) {
	qc := NewQueryCache(1, time.Minute, nil, nil)
	key := NewKey(FamilyGoals, "list", nil)
	boom := errors.New("store unavailable")

	calls := 0
	_, err := Remember(context.Background(), qc, key, 0, func(ctx context.Context) ([]planView, error) {
		calls++
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := Remember(context.Background(), qc, key, 0, func(ctx context.Context) ([]planView, error) {
		calls++
		return []planView{{Title: "ok"}}, nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, calls)
	assert.EqualValues(t, 1, qc.Len())
}

func TestRemember_NilResultNotCached(t *testing.T) {
	qc := NewQueryCache(1, time.Minute, nil, nil)
	key := NewKey(FamilyExercises, "detail", map[string]any{"id": "missing"})

	_, err := Remember(context.Background(), qc, key, 0, func(ctx context.Context) (*planView, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, qc.Len())
}

func TestInvalidate_OnlyAffectedFamilies(t *testing.T) {
	qc := NewQueryCache(1, time.Minute, nil, nil)
	ctx := context.Background()
	store := func(f Family, resource string) {
		_, err := Remember(ctx, qc, NewKey(f, resource, nil), 0, func(ctx context.Context) (string, error) {
			return resource, nil
		})
		require.NoError(t, err)
	}

	store(FamilyMeasurements, "list")
	store(FamilyGoals, "list")
	store(FamilyExercises, "list")
	store(FamilyPlanHierarchy, "tree")
	require.EqualValues(t, 4, qc.Len())

	assert.Equal(t, 2, qc.Invalidate(FamilyMeasurements))
	assert.EqualValues(t, 2, qc.Len())

	// unmapped family only drops itself
	assert.Equal(t, 0, qc.Invalidate(Family("unknown")))
	assert.EqualValues(t, 2, qc.Len())
}

func TestNilQueryCache(t *testing.T) {
	var qc *QueryCache
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := Remember(context.Background(), qc, NewKey(FamilyTeams, "mine", nil), 0, func(ctx context.Context) (int, error) {
			calls++
			return calls, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, qc.Invalidate(FamilyTeams))
}

func TestKey_SliceParamsEncodePerElement(t *testing.T) {
	oneTerm := NewKey(FamilyExercises, "list", map[string]any{"category": []string{"upper body"}})
	twoTerms := NewKey(FamilyExercises, "list", map[string]any{"category": []string{"upper", "body"}})

	assert.NotEqual(t, oneTerm.String(), twoTerms.String())
	assert.Equal(t, "exercises:list:category=upper+body", oneTerm.String())
	assert.Equal(t, "exercises:list:category=upper&category=body", twoTerms.String())

	var none []string
	assert.Equal(t, "exercises:list:", NewKey(FamilyExercises, "list", map[string]any{"category": none}).String())
}

func TestRemember_InvalidatedDuringFetchIsNotStored(t *testing.T) {
	qc := NewQueryCache(1, time.Minute, nil, nil)
	ctx := context.Background()
	key := NewKey(FamilyExercises, "detail", map[string]any{"id": "e1"})

	got, err := Remember(ctx, qc, key, 0, func(ctx context.Context) (string, error) {
		// a mutation lands while the read is still talking to the store
		qc.Invalidate(FamilyExercises)
		return "old", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "old", got)
	assert.EqualValues(t, 0, qc.Len())

	got, err = Remember(ctx, qc, key, 0, func(ctx context.Context) (string, error) {
		return "new", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new", got)

	// an unrelated invalidation drops the exercise entry but the goals read is kept
	other := NewKey(FamilyGoals, "list", nil)
	_, err = Remember(ctx, qc, other, 0, func(ctx context.Context) (string, error) {
		qc.Invalidate(FamilyExercises)
		return "goals", nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, qc.Len())
}

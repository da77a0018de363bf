package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twin-sync/core/database"
	"twin-sync/core/policy"
)

func setupAggregator(t *testing.T) (*Aggregator, *GormStore) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &ProcessReport{}))
	store := NewGormStore(db)
	return NewAggregator(store, nil), store
}

func TestAggregator_BuildLifecycle(t *testing.T) {
	ctx := context.Background()
	agg, store := setupAggregator(t)

	meta := Metadata{
		BPNNumbers:    []string{"BPNL1"},
		TypeOfAccess:  "restricted",
		UsagePolicies: []policy.UsagePolicy{{Type: policy.TypeRole, TypeOfAccess: policy.Restricted, Value: "admin"}},
	}
	c, err := agg.StartBuild(ctx, "b1", "part-as-planned", 10, meta)
	require.NoError(t, err)

	r, err := store.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, StatusStarted, r.Status)
	assert.Equal(t, 10, r.Total)
	assert.Nil(t, r.EndedAt)
	got, err := r.Meta()
	require.NoError(t, err)
	assert.Equal(t, meta, got)

	require.NoError(t, agg.MarkRunning(ctx, "b1"))
	assert.Error(t, agg.MarkRunning(ctx, "b1"))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i == 3 {
				c.IncFailure()
				return
			}
			c.IncSuccess()
		}(i)
	}
	wg.Wait()

	live, err := agg.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, live.Status)
	assert.Equal(t, 9, live.Success)

	// 9 rows succeeded, 4 of them were updates.
	final, err := agg.FinishBuild(ctx, "b1", 4)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, final.Status)
	assert.Equal(t, 5, final.Success)
	assert.Equal(t, 4, final.Updated)
	assert.Equal(t, 1, final.Failure)
	assert.Equal(t, final.Total, final.Success+final.Updated+final.Failure)
	require.NotNil(t, final.EndedAt)

	_, err = agg.FinishBuild(ctx, "b1", 0)
	assert.Error(t, err)
	assert.NoError(t, agg.Fail(ctx, "b1", errors.New("late")))

	stored, err := store.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, stored.Status)
	assert.Equal(t, 5, stored.Success)
}

func TestAggregator_DeleteLifecycle(t *testing.T) {
	ctx := context.Background()
	agg, _ := setupAggregator(t)

	_, err := agg.StartBuild(ctx, "b1", "pcf", 3, Metadata{TypeOfAccess: "unrestricted"})
	require.NoError(t, err)
	_, err = agg.FinishBuild(ctx, "b1", 0)
	require.NoError(t, err)

	ref, err := agg.Get(ctx, "b1")
	require.NoError(t, err)

	c, err := agg.StartDelete(ctx, ref, "d1", 3)
	require.NoError(t, err)
	c.IncDeleted()
	c.IncDeleted()
	c.IncFailure()

	r, err := agg.FinishDelete(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, r.IsDelete())
	assert.Equal(t, "b1", r.ReferenceBatchID)
	assert.Equal(t, "pcf", r.Kind)
	assert.Equal(t, 2, r.Deleted)
	assert.Equal(t, 1, r.Failure)
	assert.Equal(t, ref.Metadata, r.Metadata)
}

func TestAggregator_Fail(t *testing.T) {
	ctx := context.Background()
	agg, _ := setupAggregator(t)
	agg.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	c, err := agg.StartBuild(ctx, "b1", "pcf", 5, Metadata{})
	require.NoError(t, err)
	c.IncSuccess()

	require.NoError(t, agg.Fail(ctx, "b1", errors.New("executor init failed")))
	r, err := agg.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, 1, r.Success)
	assert.Equal(t, "executor init failed", r.Error)
	require.NotNil(t, r.EndedAt)
	assert.True(t, agg.now().Equal(*r.EndedAt))

	_, err = agg.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// finishFails rejects the save that would mark a report FINISHED.
type finishFails struct {
	*GormStore
}

func (s finishFails) Save(ctx context.Context, r *ProcessReport) error {
	if r.Status == StatusFinished {
		return errors.New("connection reset")
	}
	return s.GormStore.Save(ctx, r)
}

func TestAggregator_FailAfterFinishSaveKeepsCounts(t *testing.T) {
	ctx := context.Background()
	_, store := setupAggregator(t)
	agg := NewAggregator(finishFails{GormStore: store}, nil)

	c, err := agg.StartBuild(ctx, "b1", "pcf", 3, Metadata{})
	require.NoError(t, err)
	c.IncSuccess()
	c.IncSuccess()
	c.IncFailure()

	_, err = agg.FinishBuild(ctx, "b1", 0)
	require.Error(t, err)
	require.NoError(t, agg.Fail(ctx, "b1", err))

	r, err := store.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, 2, r.Success)
	assert.Equal(t, 1, r.Failure)
	assert.Equal(t, "connection reset", r.Error)
}

package report

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Counters are the per-batch outcome counters incremented by row workers.
type Counters struct {
	success atomic.Int64
	failure atomic.Int64
	deleted atomic.Int64
}

func (c *Counters) IncSuccess() { c.success.Add(1) }
func (c *Counters) IncFailure() { c.failure.Add(1) }
func (c *Counters) IncDeleted() { c.deleted.Add(1) }

// Snapshot returns the current counter values.
func (c *Counters) Snapshot() (success, failure, deleted int) {
	return int(c.success.Load()), int(c.failure.Load()), int(c.deleted.Load())
}

// Aggregator owns report status and timestamps. It is the only writer of
// process reports.
type Aggregator struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	active map[string]*Counters
}

// NewAggregator creates an aggregator over store.
func NewAggregator(store Store, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		active: make(map[string]*Counters),
	}
}

// StartBuild creates the report of a create batch.
func (a *Aggregator) StartBuild(ctx context.Context, batchID, kind string, total int, meta Metadata) (*Counters, error) {
	encoded, err := encodeMeta(meta)
	if err != nil {
		return nil, err
	}
	return a.start(ctx, &ProcessReport{
		BatchID:  batchID,
		Kind:     kind,
		Total:    total,
		Metadata: encoded,
	})
}

// StartDelete creates the report of a delete batch undoing ref.
func (a *Aggregator) StartDelete(ctx context.Context, ref *ProcessReport, batchID string, total int) (*Counters, error) {
	return a.start(ctx, &ProcessReport{
		BatchID:          batchID,
		Kind:             ref.Kind,
		Total:            total,
		Metadata:         ref.Metadata,
		ReferenceBatchID: ref.BatchID,
	})
}

func (a *Aggregator) start(ctx context.Context, r *ProcessReport) (*Counters, error) {
	r.Status = StatusStarted
	r.StartedAt = a.now()
	if err := a.store.Create(ctx, r); err != nil {
		return nil, err
	}

	c := &Counters{}
	a.mu.Lock()
	a.active[r.BatchID] = c
	a.mu.Unlock()

	a.logger.Info("Batch started",
		zap.String("batch_id", r.BatchID),
		zap.String("kind", r.Kind),
		zap.Int("total", r.Total),
		zap.String("reference_batch_id", r.ReferenceBatchID),
	)
	return c, nil
}

// MarkRunning moves a started report to RUNNING. It completes the start
// transition and is called once, before the first row is dispatched.
func (a *Aggregator) MarkRunning(ctx context.Context, batchID string) error {
	r, err := a.store.Get(ctx, batchID)
	if err != nil {
		return err
	}
	if r.Status != StatusStarted {
		return fmt.Errorf("batch %s is %s, cannot mark running", batchID, r.Status)
	}
	r.Status = StatusRunning
	return a.store.Save(ctx, r)
}

// FinishBuild finalizes a create batch. Success becomes the rows that were
// created: the raw success count minus the updated rows.
func (a *Aggregator) FinishBuild(ctx context.Context, batchID string, updated int) (*ProcessReport, error) {
	return a.finish(ctx, batchID, func(r *ProcessReport, c *Counters) {
		success, failure, _ := c.Snapshot()
		r.Success = success - updated
		r.Failure = failure
		r.Updated = updated
		if r.Success < 0 {
			a.logger.Warn("Updated rows exceed successful rows",
				zap.String("batch_id", batchID),
				zap.Int("success", success),
				zap.Int("updated", updated),
			)
		}
	})
}

// FinishDelete finalizes a delete batch.
func (a *Aggregator) FinishDelete(ctx context.Context, batchID string) (*ProcessReport, error) {
	return a.finish(ctx, batchID, func(r *ProcessReport, c *Counters) {
		_, failure, deleted := c.Snapshot()
		r.Deleted = deleted
		r.Failure = failure
	})
}

func (a *Aggregator) finish(ctx context.Context, batchID string, apply func(*ProcessReport, *Counters)) (*ProcessReport, error) {
	r, err := a.store.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if r.Status.Terminal() {
		return nil, fmt.Errorf("batch %s is already %s", batchID, r.Status)
	}

	a.mu.Lock()
	c := a.active[batchID]
	a.mu.Unlock()
	if c == nil {
		c = &Counters{}
	}
	apply(r, c)

	end := a.now()
	r.Status = StatusFinished
	r.EndedAt = &end
	// Counters stay registered until the save succeeds so Fail keeps them.
	if err := a.store.Save(ctx, r); err != nil {
		return nil, err
	}
	a.release(batchID)

	a.logger.Info("Batch finished",
		zap.String("batch_id", batchID),
		zap.Int("total", r.Total),
		zap.Int("success", r.Success),
		zap.Int("updated", r.Updated),
		zap.Int("deleted", r.Deleted),
		zap.Int("failure", r.Failure),
		zap.Duration("duration", end.Sub(r.StartedAt)),
	)
	return r, nil
}

// Fail marks a batch FAILED, keeping the counts reached so far.
func (a *Aggregator) Fail(ctx context.Context, batchID string, cause error) error {
	r, err := a.store.Get(ctx, batchID)
	if err != nil {
		return err
	}
	if r.Status.Terminal() {
		return nil
	}

	if c := a.release(batchID); c != nil {
		success, failure, deleted := c.Snapshot()
		r.Success, r.Failure, r.Deleted = success, failure, deleted
	}
	end := a.now()
	r.Status = StatusFailed
	r.EndedAt = &end
	if cause != nil {
		r.Error = cause.Error()
	}

	a.logger.Error("Batch failed", zap.String("batch_id", batchID), zap.Error(cause))
	return a.store.Save(ctx, r)
}

// Get returns the report of a batch with live counters while it runs.
func (a *Aggregator) Get(ctx context.Context, batchID string) (*ProcessReport, error) {
	r, err := a.store.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	c := a.active[batchID]
	a.mu.Unlock()
	if c != nil && !r.Status.Terminal() {
		r.Success, r.Failure, r.Deleted = c.Snapshot()
	}
	return r, nil
}

// List returns recent reports.
func (a *Aggregator) List(ctx context.Context, limit int) ([]ProcessReport, error) {
	return a.store.List(ctx, limit)
}

func (a *Aggregator) release(batchID string) *Counters {
	a.mu.Lock()
	defer a.mu.Unlock()
	c := a.active[batchID]
	delete(a.active, batchID)
	return c
}

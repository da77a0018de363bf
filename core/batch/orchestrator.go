package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"twin-sync/core/failurelog"
	"twin-sync/core/input"
	"twin-sync/core/kind"
	"twin-sync/core/logger"
	"twin-sync/core/policy"
	"twin-sync/core/reconcile"
	"twin-sync/core/record"
	"twin-sync/core/report"
)

// ErrShuttingDown is returned for submissions after Shutdown started.
var ErrShuttingDown = errors.New("orchestrator is shutting down")

// Request is one batch submission.
type Request struct {
	// BatchID is generated when empty.
	BatchID string
	// Kind names the data kind. Empty selects by columns where supported.
	Kind string
	Meta report.Metadata
	// Rows are raw field values keyed by column, in input order.
	Rows []map[string]string
}

// Source loads uploaded input files.
type Source interface {
	Load(ctx context.Context, objectName string) (*input.Table, error)
}

// Orchestrator accepts batches and runs them in the background.
type Orchestrator struct {
	cfg      Config
	kinds    *kind.Registry
	reports  *report.Aggregator
	failures failurelog.Sink
	source   Source
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates an orchestrator. source may be nil when uploads are not used.
func New(cfg Config, kinds *kind.Registry, reports *report.Aggregator, failures failurelog.Sink, source Source, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cfg:      cfg,
		kinds:    kinds,
		reports:  reports,
		failures: failures,
		source:   source,
		logger:   log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SubmitCreate starts a create batch for req.Kind and returns its batch id
// once the report exists.
func (o *Orchestrator) SubmitCreate(ctx context.Context, req Request) (string, error) {
	k, ok := o.kinds.Get(req.Kind)
	if !ok {
		return "", kind.Invalidf("unknown data kind %q", req.Kind)
	}
	return o.dispatchCreate(ctx, k, req)
}

// SubmitColumns selects the kind from columns, then behaves as SubmitCreate.
func (o *Orchestrator) SubmitColumns(ctx context.Context, req Request, columns []string) (string, error) {
	k, err := o.FindMatchingKind(columns)
	if err != nil {
		return "", err
	}
	return o.dispatchCreate(ctx, k, req)
}

// SubmitUpload parses an uploaded file and starts a create batch from it.
// With an empty req.Kind the kind is selected by the file's columns.
func (o *Orchestrator) SubmitUpload(ctx context.Context, req Request, objectName string) (string, error) {
	if o.source == nil {
		return "", fmt.Errorf("uploads are not configured")
	}
	table, err := o.source.Load(ctx, objectName)
	if err != nil {
		return "", err
	}

	var k kind.Kind
	if strings.TrimSpace(req.Kind) == "" {
		if k, err = o.FindMatchingKind(table.Columns); err != nil {
			return "", err
		}
	} else {
		var ok bool
		if k, ok = o.kinds.Get(req.Kind); !ok {
			return "", kind.Invalidf("unknown data kind %q", req.Kind)
		}
		if err := k.Schema.Validate(table.Columns); err != nil {
			return "", err
		}
	}

	req.Rows = table.Rows
	return o.dispatchCreate(ctx, k, req)
}

// FindMatchingKind returns the first registered kind whose columns equal columns.
func (o *Orchestrator) FindMatchingKind(columns []string) (kind.Kind, error) {
	return o.kinds.FindMatching(columns)
}

// Kinds lists the registered data kinds.
func (o *Orchestrator) Kinds() []kind.Kind {
	return o.kinds.All()
}

func (o *Orchestrator) dispatchCreate(ctx context.Context, k kind.Kind, req Request) (string, error) {
	if len(req.Rows) == 0 {
		return "", kind.Invalidf("batch has no rows")
	}
	meta, err := normalizeMeta(req.Meta)
	if err != nil {
		return "", err
	}
	if err := o.accepting(); err != nil {
		return "", err
	}

	batchID := strings.TrimSpace(req.BatchID)
	if batchID == "" {
		batchID = uuid.NewString()
	}

	// Row numbers follow input order and are fixed before dispatch.
	rows := make([]*reconcile.Row, len(req.Rows))
	for i, fields := range req.Rows {
		copied := make(map[string]string, len(fields))
		for col, v := range fields {
			copied[strings.ToLower(strings.TrimSpace(col))] = v
		}
		rows[i] = &reconcile.Row{Number: i + 1, BatchID: batchID, Fields: copied, Meta: meta}
	}

	counters, err := o.reports.StartBuild(ctx, batchID, k.Name(), len(rows), meta)
	if err != nil {
		return "", err
	}

	err = o.spawn(batchID, func(ctx context.Context) error {
		return o.runCreate(ctx, k, batchID, rows, counters)
	})
	if err != nil {
		_ = o.reports.Fail(context.WithoutCancel(ctx), batchID, err)
		return "", err
	}
	return batchID, nil
}

// SubmitDelete starts a batch deleting everything refBatchID created.
func (o *Orchestrator) SubmitDelete(ctx context.Context, refBatchID string) (string, error) {
	ref, err := o.reports.Get(ctx, refBatchID)
	if err != nil {
		return "", err
	}
	if ref.IsDelete() {
		return "", kind.Invalidf("batch %s is a delete batch and cannot be undone", refBatchID)
	}
	k, ok := o.kinds.Get(ref.Kind)
	if !ok {
		return "", fmt.Errorf("batch %s has unknown data kind %q", refBatchID, ref.Kind)
	}
	if err := o.accepting(); err != nil {
		return "", err
	}

	records, err := k.Executor.ReadRecordsForDelete(ctx, refBatchID)
	if err != nil {
		return "", fmt.Errorf("failed to read records of batch %s: %w", refBatchID, err)
	}

	batchID := uuid.NewString()
	counters, err := o.reports.StartDelete(ctx, ref, batchID, len(records))
	if err != nil {
		return "", err
	}

	err = o.spawn(batchID, func(ctx context.Context) error {
		return o.runDelete(ctx, k, batchID, refBatchID, records, counters)
	})
	if err != nil {
		_ = o.reports.Fail(context.WithoutCancel(ctx), batchID, err)
		return "", err
	}
	return batchID, nil
}

// Report returns the process report of a batch.
func (o *Orchestrator) Report(ctx context.Context, batchID string) (*report.ProcessReport, error) {
	return o.reports.Get(ctx, batchID)
}

// Reports returns the most recent process reports.
func (o *Orchestrator) Reports(ctx context.Context, limit int) ([]report.ProcessReport, error) {
	return o.reports.List(ctx, limit)
}

// Failures returns the failure log of a batch.
func (o *Orchestrator) Failures(ctx context.Context, batchID string) ([]failurelog.Entry, error) {
	if _, err := o.reports.Get(ctx, batchID); err != nil {
		return nil, err
	}
	return o.failures.List(ctx, batchID)
}

// Detail returns a created record of a kind, limited to the kind's fields.
func (o *Orchestrator) Detail(ctx context.Context, kindName, id string) (map[string]any, error) {
	k, ok := o.kinds.Get(kindName)
	if !ok {
		return nil, kind.Invalidf("unknown data kind %q", kindName)
	}
	rec, err := k.Executor.ReadRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return k.View(rec), nil
}

// Wait blocks until every background batch has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Shutdown stops accepting batches and waits for running ones. When ctx
// expires first, in-flight remote calls are cancelled.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.cancel()
		return nil
	case <-ctx.Done():
		o.cancel()
		<-done
		return ctx.Err()
	}
}

func (o *Orchestrator) accepting() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrShuttingDown
	}
	return nil
}

// spawn runs fn in a tracked goroutine. A returned error or a panic marks the
// batch FAILED.
func (o *Orchestrator) spawn(batchID string, fn func(ctx context.Context) error) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrShuttingDown
	}
	o.wg.Add(1)
	o.mu.Unlock()

	go func() {
		defer o.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error("Batch panicked", zap.String("batch_id", batchID), zap.Any("panic", r))
				_ = o.reports.Fail(context.WithoutCancel(o.ctx), batchID, fmt.Errorf("panic: %v", r))
			}
		}()

		if err := fn(o.ctx); err != nil {
			if ferr := o.reports.Fail(context.WithoutCancel(o.ctx), batchID, err); ferr != nil {
				o.logger.Error("Failed to mark batch failed", zap.String("batch_id", batchID), zap.Error(ferr))
			}
		}
	}()
	return nil
}

func (o *Orchestrator) runCreate(ctx context.Context, k kind.Kind, batchID string, rows []*reconcile.Row, counters *report.Counters) error {
	log := logger.WithBatch(o.logger, batchID, k.Name())

	if err := k.Executor.Init(k.Schema); err != nil {
		return err
	}
	if err := o.reports.MarkRunning(ctx, batchID); err != nil {
		return err
	}

	g := new(errgroup.Group)
	g.SetLimit(o.cfg.workers())
	for _, row := range rows {
		g.Go(func() error {
			err := o.guard(row.Number, func() error {
				rowCtx, cancel := context.WithTimeout(ctx, o.cfg.rowTimeout())
				defer cancel()
				_, err := k.Executor.ExecuteRow(rowCtx, row, batchID)
				return err
			})
			if err != nil {
				counters.IncFailure()
				o.recordFailure(ctx, log, batchID, row.Number, err)
				return nil
			}
			counters.IncSuccess()
			return nil
		})
	}
	_ = g.Wait()

	// Workers are done; updates are subtracted from success exactly once.
	updated, err := k.Executor.CountUpdatedRows(context.WithoutCancel(ctx), batchID)
	if err != nil {
		return fmt.Errorf("failed to count updated rows: %w", err)
	}
	_, err = o.reports.FinishBuild(context.WithoutCancel(ctx), batchID, updated)
	return err
}

func (o *Orchestrator) runDelete(ctx context.Context, k kind.Kind, batchID, refBatchID string, records []record.Record, counters *report.Counters) error {
	log := logger.WithBatch(o.logger, batchID, k.Name())

	if err := o.reports.MarkRunning(ctx, batchID); err != nil {
		return err
	}

	g := new(errgroup.Group)
	g.SetLimit(o.cfg.workers())
	for _, rec := range records {
		g.Go(func() error {
			err := o.guard(rec.RowNumber, func() error {
				rowCtx, cancel := context.WithTimeout(ctx, o.cfg.rowTimeout())
				defer cancel()
				return k.Executor.DeleteRecord(rowCtx, rec, batchID, refBatchID)
			})
			if err != nil {
				counters.IncFailure()
				o.recordFailure(ctx, log, batchID, rec.RowNumber, err)
				return nil
			}
			counters.IncDeleted()
			return nil
		})
	}
	_ = g.Wait()

	_, err := o.reports.FinishDelete(context.WithoutCancel(ctx), batchID)
	return err
}

// guard turns a panic in one row into that row's error.
func (o *Orchestrator) guard(rowNumber int, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("row %d panicked: %v", rowNumber, r)
		}
	}()
	return fn()
}

func (o *Orchestrator) recordFailure(ctx context.Context, log *zap.Logger, batchID string, rowNumber int, err error) {
	stage := reconcile.StageOf(err)
	log.Warn("Row failed",
		zap.Int("row", rowNumber),
		zap.String("stage", string(stage)),
		zap.Error(err),
	)
	if ferr := o.failures.Record(context.WithoutCancel(ctx), batchID, rowNumber, string(stage), failureMessage(err)); ferr != nil {
		log.Error("Failed to record row failure", zap.Int("row", rowNumber), zap.Error(ferr))
	}
}

// failureMessage prefixes the message with the system that failed.
func failureMessage(err error) string {
	var re *reconcile.RowError
	if !errors.As(err, &re) {
		return err.Error()
	}
	switch re.Stage {
	case reconcile.StageTwin:
		return "DigitalTwins: " + re.Err.Error()
	case reconcile.StageAsset:
		return "EDC: " + re.Err.Error()
	default:
		return re.Err.Error()
	}
}

// normalizeMeta completes the usage policy set and rejects metadata that
// cannot be turned into policies.
func normalizeMeta(meta report.Metadata) (report.Metadata, error) {
	access := strings.ToLower(strings.TrimSpace(meta.TypeOfAccess))
	switch access {
	case "":
		access = "unrestricted"
	case "restricted", "unrestricted":
	default:
		return meta, kind.Invalidf("type of access must be restricted or unrestricted, got %q", meta.TypeOfAccess)
	}
	meta.TypeOfAccess = access

	bpns := make([]string, 0, len(meta.BPNNumbers))
	for _, b := range meta.BPNNumbers {
		if b = strings.TrimSpace(b); b != "" {
			bpns = append(bpns, b)
		}
	}
	meta.BPNNumbers = bpns
	if meta.Restricted() && len(bpns) == 0 {
		return meta, kind.Invalidf("restricted access requires at least one BPN number")
	}

	meta.UsagePolicies = policy.Normalize(meta.UsagePolicies)
	if _, _, err := policy.ToConstraints(meta.UsagePolicies); err != nil {
		return meta, kind.Invalidf("invalid usage policy: %v", err)
	}
	return meta, nil
}

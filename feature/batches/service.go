package batches

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"twin-sync/core/batch"
	"twin-sync/core/failurelog"
	"twin-sync/core/input"
	"twin-sync/core/kind"
	"twin-sync/core/report"
	"twin-sync/core/storage"
	"twin-sync/core/utils"
)

// Service adapts HTTP requests to the batch orchestrator.
type Service struct {
	orch    *batch.Orchestrator
	client  storage.Client
	storage storage.Config
	logger  *zap.Logger
}

// NewService creates a new batches service. client may be nil when uploads
// are disabled.
func NewService(orch *batch.Orchestrator, client storage.Client, cfg storage.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{orch: orch, client: client, storage: cfg, logger: logger}
}

// Submit starts a create batch for kindName.
func (s *Service) Submit(ctx context.Context, kindName string, req SubmitRequest) (string, error) {
	return s.orch.SubmitCreate(ctx, toBatchRequest(kindName, req))
}

// SubmitColumns starts a create batch for the kind matching req.Columns.
func (s *Service) SubmitColumns(ctx context.Context, req ColumnsRequest) (string, error) {
	return s.orch.SubmitColumns(ctx, toBatchRequest("", req.SubmitRequest), req.Columns)
}

// Upload stores an input file and starts a create batch from it.
func (s *Service) Upload(ctx context.Context, req batch.Request, fileName string, r io.Reader, size int64) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("uploads are not configured")
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if ext != input.ExtCSV && ext != input.ExtXLSX {
		return "", kind.Invalidf("unsupported input file %s: expected %s or %s", fileName, input.ExtCSV, input.ExtXLSX)
	}
	if strings.TrimSpace(req.BatchID) == "" {
		req.BatchID = uuid.NewString()
	}

	objectName := storage.UploadObjectName(s.storage.UploadPrefix, req.BatchID, fileName)
	if _, err := s.client.PutObject(ctx, s.storage.Bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType(ext),
	}); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", objectName, err)
	}
	s.logger.Debug("Stored batch input", zap.String("object", objectName), zap.Int64("size", size))

	return s.orch.SubmitUpload(ctx, req, objectName)
}

// Delete starts a delete batch undoing refBatchID.
func (s *Service) Delete(ctx context.Context, refBatchID string) (string, error) {
	return s.orch.SubmitDelete(ctx, refBatchID)
}

// Report returns the process report of a batch.
func (s *Service) Report(ctx context.Context, batchID string) (*report.ProcessReport, error) {
	return s.orch.Report(ctx, batchID)
}

// Reports returns the most recent process reports.
func (s *Service) Reports(ctx context.Context, limit int) ([]report.ProcessReport, error) {
	return s.orch.Reports(ctx, limit)
}

// Failures returns the failure log of a batch.
func (s *Service) Failures(ctx context.Context, batchID string) ([]failurelog.Entry, error) {
	return s.orch.Failures(ctx, batchID)
}

// Detail returns one created record of a kind.
func (s *Service) Detail(ctx context.Context, kindName, id string) (map[string]any, error) {
	return s.orch.Detail(ctx, kindName, id)
}

// Schemas lists the schemas of the registered kinds.
func (s *Service) Schemas() []kind.Schema {
	kinds := s.orch.Kinds()
	out := make([]kind.Schema, len(kinds))
	for i, k := range kinds {
		out[i] = k.Schema
	}
	return out
}

func toBatchRequest(kindName string, req SubmitRequest) batch.Request {
	rows := make([]map[string]string, len(req.Rows))
	for i, row := range req.Rows {
		rows[i] = utils.ToCells(row)
	}
	return batch.Request{
		BatchID: req.BatchID,
		Kind:    kindName,
		Meta:    req.Metadata,
		Rows:    rows,
	}
}

func contentType(ext string) string {
	if ext == input.ExtXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small interface used to keep uploaded
// batch input files (CSV or XLSX). Both AWS S3 and self-hosted MinIO work.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Layout
//
// Uploaded files are stored as <upload_prefix>/<batch id><ext>; UploadObjectName
// builds that name and the input parser reads it back when the batch is dispatched.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage

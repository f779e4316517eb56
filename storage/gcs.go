package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Upload writes the prepared dataset to a Cloud Storage object in the Arrow
// IPC file format, so training jobs can pull it straight from the bucket.
func Upload(ctx context.Context, client *gcs.Client, bucket, object string, rec arrow.Record) error {
	w := client.Bucket(bucket).Object(object).NewWriter(ctx)

	writer, err := ipc.NewFileWriter(
		w,
		ipc.WithSchema(rec.Schema()),
		ipc.WithAllocator(memory.NewGoAllocator()),
	)
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to create Arrow file writer: %w", err)
	}

	if err := writer.Write(rec); err != nil {
		_ = writer.Close()
		_ = w.Close()
		return fmt.Errorf("failed to write record to %s/%s: %w", bucket, object, err)
	}
	if err := writer.Close(); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to finish Arrow file: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close object %s/%s: %w", bucket, object, err)
	}
	return nil
}

// Package storage persists prepared datasets in the Arrow IPC file format.
package storage

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Save writes the prepared dataset to a file on disk in the Arrow IPC file
// format. The schema is written first, followed by the record.
func Save(filepath string, rec arrow.Record) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create file %q: %w", filepath, err)
	}
	defer func() {
		_ = file.Close()
	}()

	writer, err := ipc.NewFileWriter(
		file,
		ipc.WithSchema(rec.Schema()),
		ipc.WithAllocator(memory.NewGoAllocator()),
	)
	if err != nil {
		return fmt.Errorf("failed to create Arrow file writer: %w", err)
	}

	if err := writer.Write(rec); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write record to Arrow file: %w", err)
	}
	return writer.Close()
}

// Load reads a prepared dataset back from disk. The returned record is
// retained; the caller releases it.
func Load(filepath string) (arrow.Record, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filepath, err)
	}
	defer func() {
		_ = file.Close()
	}()

	reader, err := ipc.NewFileReader(
		file,
		ipc.WithAllocator(memory.NewGoAllocator()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Arrow file reader: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	if reader.NumRecords() == 0 {
		return nil, fmt.Errorf("file %q holds no records", filepath)
	}
	rec, err := reader.RecordAt(0)
	if err != nil {
		return nil, fmt.Errorf("failed to read record from file: %w", err)
	}
	rec.Retain()
	return rec, nil
}

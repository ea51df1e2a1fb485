package ipc

import (
	"errors"
	"log/slog"

	"github.com/vellum-data/vellum"
)

// RowIndex asks ReadFile to prepend an int64 column counting rows from
// Offset.
type RowIndex struct {
	Name   string
	Offset int64
}

// ConstantColumn asks ReadFile to append a utf8 column holding the same
// value in every row. This is how externally derived values, such as hive
// partition keys, enter a decoded table.
type ConstantColumn struct {
	Name  string
	Value string
}

// ReadOptions configures ReadFile. Options are passed by value and never
// mutated, so one options value can drive many concurrent reads.
type ReadOptions struct {
	// Columns projects the read to the named columns, in the given order.
	// A nil slice reads every column; an empty non-nil slice reads no
	// columns but still reports the row count.
	Columns []string

	// NRows caps the number of rows read when positive.
	NRows int64

	// MemoryMap asks for the zero-copy mapped strategy. Files with
	// compressed batches silently fall back to buffered reads.
	MemoryMap bool

	// RowIndex, when non-nil, prepends a row-numbering column.
	RowIndex *RowIndex

	// FilePathColumn, when non-empty, appends a column holding the source
	// path.
	FilePathColumn string

	// ConstantColumns are appended after the file's own columns.
	ConstantColumns []ConstantColumn

	// Logger receives read diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

func (o *ReadOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// ReadFile reads a whole file into a table.
//
// With MemoryMap set it first tries the zero-copy strategy, in which the
// table's columns alias the mapping until the table is closed. When the
// mapped strategy reports a FallbackError, the file is reopened for buffered
// reading and the fallback is logged once; any other error is returned.
func ReadFile(path string, opts ReadOptions) (*vellum.Table, error) {
	if opts.MemoryMap {
		t, err := readMapped(path, opts)
		var fb *FallbackError
		if !errors.As(err, &fb) {
			return t, err
		}
		opts.logger().Warn("falling back to buffered reads",
			slog.String("path", path),
			slog.String("reason", err.Error()))
	}
	f, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readTable(f, path, opts, nil)
}

func readMapped(path string, opts ReadOptions) (*vellum.Table, error) {
	f, err := OpenMapped(path)
	if err != nil {
		return nil, err
	}
	t, err := readTable(f, path, opts, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return t, nil
}

// readTable drives a FileReader batch by batch until the projection and row
// cap are satisfied, then applies the column injections.
func readTable(f *FileReader, path string, opts ReadOptions, owns *FileReader) (*vellum.Table, error) {
	schema, err := f.Schema()
	if err != nil {
		return nil, err
	}
	projection, err := schema.Projection(opts.Columns)
	if err != nil {
		return nil, err
	}

	var batches []*vellum.Batch
	if projection != nil && len(projection) == 0 {
		// Column-less read: only the row count is needed, so no batch body
		// is decoded.
		height, err := f.RowCount()
		if err != nil {
			return nil, err
		}
		if opts.NRows > 0 && opts.NRows < height {
			height = opts.NRows
		}
		batches = append(batches, vellum.EmptyBatch(int(height)))
	} else {
		n, err := f.NumBatches()
		if err != nil {
			return nil, err
		}
		remaining := int64(-1)
		if opts.NRows > 0 {
			remaining = opts.NRows
		}
		for i := 0; i < n && remaining != 0; i++ {
			limit := -1
			if remaining > 0 {
				limit = int(remaining)
			}
			b, err := f.Batch(i, projection, limit)
			if err != nil {
				return nil, err
			}
			if remaining > 0 {
				remaining -= int64(b.Height())
			}
			batches = append(batches, b)
		}
	}

	offset := int64(0)
	if opts.RowIndex != nil {
		offset = opts.RowIndex.Offset
	}
	for i, b := range batches {
		if opts.RowIndex != nil {
			b = b.WithRowIndex(opts.RowIndex.Name, offset)
			offset += int64(b.Height())
		}
		if opts.FilePathColumn != "" {
			b = b.WithFilePath(opts.FilePathColumn, path)
		}
		for _, c := range opts.ConstantColumns {
			b = b.WithConstantColumn(c.Name, c.Value)
		}
		batches[i] = b
	}

	tableSchema := schema.Select(projection)
	if len(batches) > 0 {
		tableSchema = batches[0].Schema()
	}
	if owns != nil {
		// Avoid a typed-nil io.Closer inside the table.
		return vellum.NewTable(tableSchema, batches, owns)
	}
	return vellum.NewTable(tableSchema, batches, nil)
}

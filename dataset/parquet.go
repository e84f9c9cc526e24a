package dataset

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/google/uuid"
	"github.com/rmugicag/pyquet/table"
)

const hiveDefaultPartition = "__HIVE_DEFAULT_PARTITION__"

// CheckPartitions verifies every partition key names a distinct output
// column and that at least one column is left for the data files.
func CheckPartitions(s table.Schema, partitions []string) error {
	_, err := partitionIndices(s.Names(), partitions)
	return err
}

func partitionIndices(names []string, partitions []string) ([]int, error) {
	index := make(map[string]int, len(names))
	for i, n := range names {
		if _, ok := index[n]; !ok {
			index[n] = i
		}
	}

	keys := make([]int, 0, len(partitions))
	seen := make(map[string]bool, len(partitions))
	for _, p := range partitions {
		idx, ok := index[p]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPartition, p)
		}
		if seen[p] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePartition, p)
		}
		seen[p] = true
		keys = append(keys, idx)
	}
	if len(keys) > 0 && len(keys) == len(names) {
		return nil, ErrNoDataColumns
	}
	return keys, nil
}

// WriteParquet replaces dir with a Parquet dataset holding rec. With
// partitions, rows are grouped by their partition values into nested
// key=value directories and the partition columns are left out of the
// files. Each group is written to one <uuid>-0.parquet file.
func WriteParquet(rec arrow.Record, dir string, partitions []string, mem memory.Allocator) error {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	names := make([]string, rec.NumCols())
	for j := range names {
		names[j] = rec.ColumnName(j)
	}
	keys, err := partitionIndices(names, partitions)
	if err != nil {
		return err
	}

	if err := removeExisting(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating dataset directory: %w", err)
	}

	if len(keys) == 0 {
		return writeParquetFile(dir, rec, mem)
	}

	isKey := make(map[int]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	var data []int
	for j := 0; j < int(rec.NumCols()); j++ {
		if !isKey[j] {
			data = append(data, j)
		}
	}

	for _, g := range groupRows(rec, keys) {
		if err := writePartition(dir, rec, g, data, mem); err != nil {
			return err
		}
	}
	return nil
}

type rowGroup struct {
	path string
	rows []int
}

// groupRows groups row indices by partition path, in order of first
// appearance.
func groupRows(rec arrow.Record, keys []int) []*rowGroup {
	var groups []*rowGroup
	byPath := map[string]*rowGroup{}

	segs := make([]string, len(keys))
	for i := 0; i < int(rec.NumRows()); i++ {
		for k, col := range keys {
			segs[k] = partitionSegment(rec.ColumnName(col), rec.Column(col), i)
		}
		p := filepath.Join(segs...)
		g, ok := byPath[p]
		if !ok {
			g = &rowGroup{path: p}
			byPath[p] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, i)
	}
	return groups
}

func writePartition(dir string, rec arrow.Record, g *rowGroup, data []int, mem memory.Allocator) error {
	fields := make([]arrow.Field, 0, len(data))
	cols := make([]arrow.Array, 0, len(data))
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	for _, j := range data {
		arr, err := take(rec.Column(j), g.rows, mem)
		if err != nil {
			return fmt.Errorf("selecting partition rows: %w", err)
		}
		cols = append(cols, arr)
		fields = append(fields, rec.Schema().Field(j))
	}

	part := array.NewRecord(arrow.NewSchema(fields, nil), cols, int64(len(g.rows)))
	defer part.Release()

	target := filepath.Join(dir, g.path)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("creating partition directory: %w", err)
	}
	return writeParquetFile(target, part, mem)
}

// take copies the given rows of arr, slicing consecutive runs.
func take(arr arrow.Array, rows []int, mem memory.Allocator) (arrow.Array, error) {
	var slices []arrow.Array
	defer func() {
		for _, s := range slices {
			s.Release()
		}
	}()

	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end] == rows[end-1]+1 {
			end++
		}
		slices = append(slices, array.NewSlice(arr, int64(rows[start]), int64(rows[end-1]+1)))
		start = end
	}

	if len(slices) == 0 {
		return array.NewSlice(arr, 0, 0), nil
	}
	return array.Concatenate(slices, mem)
}

func writeParquetFile(dir string, rec arrow.Record, mem memory.Allocator) error {
	path := filepath.Join(dir, uuid.NewString()+"-0.parquet")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating parquet file: %w", err)
	}
	defer f.Close()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithAllocator(mem),
	)
	arrProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithStoreSchema(),
		pqarrow.WithAllocator(mem),
	)

	w, err := pqarrow.NewFileWriter(rec.Schema(), f, props, arrProps)
	if err != nil {
		return fmt.Errorf("opening parquet writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return fmt.Errorf("writing parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}

// escapePartitionValue escapes a partition value for use as a single path
// segment.
func escapePartitionValue(v string) string {
	if v == "" {
		return hiveDefaultPartition
	}
	return url.PathEscape(v)
}

// UnescapePartitionValue reverses escapePartitionValue.
func UnescapePartitionValue(v string) string {
	if v == hiveDefaultPartition {
		return ""
	}
	if s, err := url.PathUnescape(v); err == nil {
		return s
	}
	return v
}

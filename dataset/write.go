package dataset

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/rmugicag/pyquet/table"
)

// Write casts t to s and writes it to path as out. It returns the path
// actually written. Partition keys are checked and the cast is done before
// any existing output is removed.
func Write(t *table.Table, s table.Schema, out OutputType, path string, partitions []string) (string, error) {
	if out == Parquet {
		if err := CheckPartitions(s, partitions); err != nil {
			return path, err
		}
	}

	mem := memory.DefaultAllocator
	rec, err := Cast(t, s, mem)
	if err != nil {
		return path, err
	}
	defer rec.Release()

	switch out {
	case CSV:
		return WriteCSV(rec, path, mem)
	case Parquet:
		return path, WriteParquet(rec, path, partitions, mem)
	}
	return path, fmt.Errorf("unsupported output type %q", out)
}

package dataset

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	arrowcsv "github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// WriteCSV writes rec to path (".csv" appended when missing) with a header
// row, replacing any existing file. It returns the path written.
func WriteCSV(rec arrow.Record, path string, mem memory.Allocator) (string, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	path = CSVPath(path)

	if err := ensureParent(path); err != nil {
		return path, err
	}
	if err := removeExisting(path); err != nil {
		return path, err
	}

	f, err := os.Create(path)
	if err != nil {
		return path, fmt.Errorf("creating csv file: %w", err)
	}
	defer f.Close()

	strs := stringRecord(rec, mem)
	defer strs.Release()

	w := arrowcsv.NewWriter(f, strs.Schema(),
		arrowcsv.WithHeader(true),
		arrowcsv.WithNullWriter(""),
	)
	if err := w.Write(strs); err != nil {
		return path, fmt.Errorf("writing csv rows: %w", err)
	}
	if err := w.Flush(); err != nil {
		return path, fmt.Errorf("flushing csv file: %w", err)
	}
	if err := f.Close(); err != nil {
		return path, fmt.Errorf("closing csv file: %w", err)
	}
	return path, nil
}

// Package dataset casts generated tables to Arrow records and writes them
// as a CSV file or a hive-partitioned Parquet dataset.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rmugicag/pyquet/schema"
)

var (
	// ErrSchemaMismatch wraps a *table.CastError when a value cannot be
	// cast to the output schema.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrUnknownPartition is returned when a partition key is not an output column.
	ErrUnknownPartition = errors.New("unknown partition column")
	// ErrDuplicatePartition is returned when a partition key is repeated.
	ErrDuplicatePartition = errors.New("duplicate partition column")
	// ErrNoDataColumns is returned when every output column is a partition
	// key, which would leave the data files without columns or rows.
	ErrNoDataColumns = errors.New("no data left outside partition columns")
)

type OutputType string

const (
	CSV     OutputType = "csv"
	Parquet OutputType = "parquet"
)

// ParseOutputType accepts csv and parquet in any case.
func ParseOutputType(s string) (OutputType, bool) {
	switch OutputType(strings.ToLower(strings.TrimSpace(s))) {
	case CSV:
		return CSV, true
	case Parquet:
		return Parquet, true
	}
	return "", false
}

// ResolvePath picks the destination: an explicit path, then the schema name
// under destinationDir, then the schema's physicalPath as given.
func ResolvePath(def schema.Definition, destinationPath, destinationDir string) string {
	switch {
	case destinationPath != "":
		return destinationPath
	case destinationDir != "":
		return filepath.Join(destinationDir, def.Name)
	default:
		return def.PhysicalPath
	}
}

// CSVPath appends the .csv extension when path does not already end with it.
func CSVPath(path string) string {
	if strings.HasSuffix(path, ".csv") {
		return path
	}
	return path + ".csv"
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

// removeExisting deletes a file or directory at path if there is one.
func removeExisting(path string) error {
	if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

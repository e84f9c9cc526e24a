package introspect

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/rmugicag/pyquet/dataset"
	"github.com/rmugicag/pyquet/schema"
)

// ExistingColumn is a column found in a dataset. Inferred is set when Type
// was guessed from CSV text rather than read from file metadata.
type ExistingColumn struct {
	Name      string              `json:"name"`
	Type      schema.PhysicalType `json:"type"`
	Inferred  bool                `json:"inferred,omitempty"`
	Partition bool                `json:"partition,omitempty"`
}

// Dataset describes output read back from disk. PartitionValues holds the
// distinct values of each partition key, in file order.
type Dataset struct {
	Path            string              `json:"path"`
	Format          dataset.OutputType  `json:"format"`
	Columns         []ExistingColumn    `json:"columns"`
	Partitions      []string            `json:"partitions,omitempty"`
	PartitionValues map[string][]string `json:"partitionValues,omitempty"`
	Files           []string            `json:"files"`
	RowCount        int64               `json:"rowCount"`
}

// Column returns the column called name.
func (d *Dataset) Column(name string) (ExistingColumn, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ExistingColumn{}, false
}

// ReadDataset reads a CSV file or a Parquet dataset directory. A path
// without extension also matches the CSV file written for it.
func ReadDataset(path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) && !strings.HasSuffix(path, ".csv") {
		if _, cerr := os.Stat(dataset.CSVPath(path)); cerr == nil {
			return readCSV(dataset.CSVPath(path))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("unable to stat dataset: %w", err)
	}

	if info.IsDir() {
		return readParquet(path)
	}
	if strings.HasSuffix(path, ".parquet") {
		return readParquet(path)
	}
	return readCSV(path)
}

func readParquet(path string) (*Dataset, error) {
	ds := &Dataset{Path: path, Format: dataset.Parquet}

	root := path
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("unable to stat dataset: %w", err)
	}
	if info.IsDir() {
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".parquet") {
				ds.Files = append(ds.Files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking dataset: %w", err)
		}
		sort.Strings(ds.Files)
	} else {
		root = filepath.Dir(path)
		ds.Files = []string{path}
	}

	if len(ds.Files) == 0 {
		return nil, fmt.Errorf("no parquet files under %s", path)
	}

	seen := map[string]int{}
	for _, file := range ds.Files {
		cols, rows, err := readParquetFile(file)
		if err != nil {
			return nil, err
		}
		ds.RowCount += rows

		for _, seg := range partitionSegments(root, file) {
			cols = append(cols, ExistingColumn{Name: seg.key, Type: schema.StringType(), Partition: true})
			ds.addPartitionValue(seg.key, seg.value)
		}

		for _, c := range cols {
			i, ok := seen[c.Name]
			if !ok {
				seen[c.Name] = len(ds.Columns)
				ds.Columns = append(ds.Columns, c)
				if c.Partition {
					ds.Partitions = append(ds.Partitions, c.Name)
				}
				continue
			}
			if prev := ds.Columns[i]; prev.Type != c.Type {
				return nil, fmt.Errorf("%s: column %q is %s, other files have %s", file, c.Name, c.Type, prev.Type)
			}
		}
	}

	return ds, nil
}

func readParquetFile(path string) ([]ExistingColumn, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	mem := memory.DefaultAllocator
	tbl, err := pqarrow.ReadTable(context.Background(), f, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", path, err)
	}
	defer tbl.Release()

	sc := tbl.Schema()
	cols := make([]ExistingColumn, 0, sc.NumFields())
	for _, field := range sc.Fields() {
		pt, _ := schema.FromArrow(field.Type)
		cols = append(cols, ExistingColumn{Name: field.Name, Type: pt})
	}
	return cols, tbl.NumRows(), nil
}

type partitionSegment struct {
	key, value string
}

// partitionSegments returns the key=value segments of the directory of
// file, relative to the dataset root, with values unescaped.
func partitionSegments(root, file string) []partitionSegment {
	rel, err := filepath.Rel(root, filepath.Dir(file))
	if err != nil || rel == "." {
		return nil
	}
	var segs []partitionSegment
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if key, val, ok := strings.Cut(seg, "="); ok {
			segs = append(segs, partitionSegment{key: key, value: dataset.UnescapePartitionValue(val)})
		}
	}
	return segs
}

func (d *Dataset) addPartitionValue(key, value string) {
	if d.PartitionValues == nil {
		d.PartitionValues = map[string][]string{}
	}
	for _, v := range d.PartitionValues[key] {
		if v == value {
			return
		}
	}
	d.PartitionValues[key] = append(d.PartitionValues[key], value)
}

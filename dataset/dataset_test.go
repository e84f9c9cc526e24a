package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/rmugicag/pyquet/catalog"
	"github.com/rmugicag/pyquet/schema"
	"github.com/rmugicag/pyquet/table"
)

var partFileRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}-0\.parquet$`)

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.New()
	cols := []table.Column{
		{Name: "id", Type: schema.StringType(), Values: []any{"a", "b"}},
		{Name: "qty", Type: schema.Int64Type(), Values: []any{int64(1), nil}},
		{Name: "amount", Type: schema.DecimalType(6, 2), Values: []any{"1.5", catalog.Number("2.345")}},
		{Name: "d", Type: schema.Date32Type(), Values: []any{"2024-01-31", "2024-01-31"}},
		{Name: "ts", Type: schema.TimestampMillisType(), Values: []any{"2024-01-31 10:11:12", "2024-01-31 10:11:12"}},
		{Name: "tm", Type: schema.Time32MillisType(), Values: []any{"07:08:09", "07:08:09"}},
	}
	for _, c := range cols {
		if err := tbl.Set(c); err != nil {
			t.Fatalf("Set(%s): %v", c.Name, err)
		}
	}
	return tbl
}

func TestResolvePath(t *testing.T) {
	def := schema.Definition{Name: "t_accounts", PhysicalPath: "/raw/t_accounts"}
	cases := []struct {
		path, dir, want string
	}{
		{"explicit/out", "dir", "explicit/out"},
		{"", "dir", filepath.Join("dir", "t_accounts")},
		{"", "", "/raw/t_accounts"},
	}
	for _, tc := range cases {
		if got := ResolvePath(def, tc.path, tc.dir); got != tc.want {
			t.Errorf("ResolvePath(%q, %q) = %q, want %q", tc.path, tc.dir, got, tc.want)
		}
	}
}

func TestParseOutputType(t *testing.T) {
	for in, want := range map[string]OutputType{"csv": CSV, "parquet": Parquet, " CSV ": CSV} {
		got, ok := ParseOutputType(in)
		if !ok || got != want {
			t.Errorf("ParseOutputType(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseOutputType("xml"); ok {
		t.Error("xml must not be a valid output type")
	}
	if CSVPath("out.csv") != "out.csv" || CSVPath("out") != "out.csv" {
		t.Error("CSVPath mismatch")
	}
}

func TestCast(t *testing.T) {
	tbl := sampleTable(t)
	rec, err := Cast(tbl, tbl.Schema(), memory.DefaultAllocator)
	if err != nil {
		t.Fatalf("Cast() error = %v", err)
	}
	defer rec.Release()

	if rec.NumRows() != 2 || rec.NumCols() != 6 {
		t.Fatalf("record shape = %d x %d", rec.NumRows(), rec.NumCols())
	}
	for i, f := range tbl.Schema().Fields {
		if !arrow.TypeEqual(rec.Schema().Field(i).Type, f.Type.Arrow()) {
			t.Errorf("field %s type = %s, want %s", f.Name, rec.Schema().Field(i).Type, f.Type.Arrow())
		}
	}
	if !rec.Column(1).IsNull(1) {
		t.Error("nil token should cast to null")
	}
	if got := FormatValue(rec.Column(2), 1); got != "2.35" {
		t.Errorf("amount[1] = %s, want 2.35", got)
	}
	if got := rec.Column(5).(*array.Time32).Value(0); got != arrow.Time32(25_689_000) {
		t.Errorf("tm[0] = %d", got)
	}
}

func TestCastMismatch(t *testing.T) {
	tbl := table.New()
	_ = tbl.Set(table.Column{Name: "qty", Type: schema.Int64Type(), Values: []any{int64(1), "abc"}})

	_, err := Cast(tbl, tbl.Schema(), nil)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("Cast() error = %v, want ErrSchemaMismatch", err)
	}
	var ce *table.CastError
	if !errors.As(err, &ce) || ce.Column != "qty" || ce.Row != 1 {
		t.Fatalf("cast error = %#v", ce)
	}
}

func TestWriteCSV(t *testing.T) {
	tbl := sampleTable(t)
	base := filepath.Join(t.TempDir(), "nested", "out")

	path, err := Write(tbl, tbl.Schema(), CSV, base, nil)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if path != base+".csv" {
		t.Fatalf("path = %q", path)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "id,qty,amount,d,ts,tm\n" +
		"a,1,1.50,2024-01-31,2024-01-31 10:11:12,07:08:09\n" +
		"b,,2.35,2024-01-31,2024-01-31 10:11:12,07:08:09\n"
	if string(got) != want {
		t.Fatalf("csv =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteParquetRoundTrip(t *testing.T) {
	tbl := sampleTable(t)
	dir := filepath.Join(t.TempDir(), "ds")

	if _, err := Write(tbl, tbl.Schema(), Parquet, dir, nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	files := parquetFiles(t, dir)
	if len(files) != 1 {
		t.Fatalf("files = %v", files)
	}
	if !partFileRe.MatchString(filepath.Base(files[0])) {
		t.Errorf("unexpected file name %s", filepath.Base(files[0]))
	}

	got := readParquet(t, files[0])
	defer got.Release()
	if got.NumRows() != 2 {
		t.Fatalf("rows = %d", got.NumRows())
	}
	for i, name := range tbl.Schema().Names() {
		f := got.Schema().Field(i)
		if f.Name != name {
			t.Errorf("column %d = %s, want %s", i, f.Name, name)
		}
		if !arrow.TypeEqual(f.Type, tbl.Schema().Fields[i].Type.Arrow()) {
			t.Errorf("column %s type = %s", name, f.Type)
		}
	}
	amount := got.Column(2).Data().Chunk(0)
	if FormatValue(amount, 0) != "1.50" {
		t.Errorf("amount[0] = %s", FormatValue(amount, 0))
	}
}

func TestWriteParquetPartitions(t *testing.T) {
	tbl := table.New()
	_ = tbl.Set(table.Column{Name: "a", Type: schema.StringType(), Values: []any{"x", "y", "x"}})
	_ = tbl.Set(table.Column{Name: "b", Type: schema.Int64Type(), Values: []any{int64(1), int64(2), int64(3)}})
	_ = tbl.Set(table.Column{Name: "c", Type: schema.StringType(), Values: []any{"p", "q", "r"}})
	dir := filepath.Join(t.TempDir(), "ds")

	if _, err := Write(tbl, tbl.Schema(), Parquet, dir, []string{"a"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	files := parquetFiles(t, dir)
	var dirs []string
	for _, f := range files {
		rel, _ := filepath.Rel(dir, filepath.Dir(f))
		dirs = append(dirs, rel)
	}
	sort.Strings(dirs)
	if strings.Join(dirs, ",") != "a=x,a=y" {
		t.Fatalf("partition dirs = %v", dirs)
	}

	rows := 0
	for _, f := range files {
		got := readParquet(t, f)
		rows += int(got.NumRows())
		if got.NumCols() != 2 || got.Schema().Field(0).Name != "b" || got.Schema().Field(1).Name != "c" {
			t.Errorf("%s schema = %s", f, got.Schema())
		}
		got.Release()
	}
	if rows != 3 {
		t.Fatalf("total rows = %d", rows)
	}
}

func TestWriteParquetUnknownPartition(t *testing.T) {
	tbl := sampleTable(t)
	dir := filepath.Join(t.TempDir(), "ds")

	_, err := Write(tbl, tbl.Schema(), Parquet, dir, []string{"nope"})
	if !errors.Is(err, ErrUnknownPartition) {
		t.Fatalf("error = %v, want ErrUnknownPartition", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("nothing should be written for an unknown partition")
	}
}

func TestWriteParquetRejectsPartitionLayouts(t *testing.T) {
	tbl := table.New()
	_ = tbl.Set(table.Column{Name: "d", Type: schema.StringType(), Values: []any{"x", "y"}})
	_ = tbl.Set(table.Column{Name: "n", Type: schema.Int64Type(), Values: []any{int64(1), int64(2)}})

	cases := []struct {
		name       string
		partitions []string
		want       error
	}{
		{"repeated key", []string{"d", "d"}, ErrDuplicatePartition},
		{"every column", []string{"d", "n"}, ErrNoDataColumns},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "ds")
			if err := CheckPartitions(tbl.Schema(), tc.partitions); !errors.Is(err, tc.want) {
				t.Fatalf("CheckPartitions() error = %v, want %v", err, tc.want)
			}
			if _, err := Write(tbl, tbl.Schema(), Parquet, dir, tc.partitions); !errors.Is(err, tc.want) {
				t.Fatalf("Write() error = %v, want %v", err, tc.want)
			}
			if _, err := os.Stat(dir); !os.IsNotExist(err) {
				t.Fatal("nothing should be written")
			}
		})
	}
}

func TestWriteReplacesDestination(t *testing.T) {
	tbl := sampleTable(t)
	dir := filepath.Join(t.TempDir(), "ds")

	for i := 0; i < 2; i++ {
		if _, err := Write(tbl, tbl.Schema(), Parquet, dir, nil); err != nil {
			t.Fatalf("Write() #%d error = %v", i, err)
		}
	}
	if files := parquetFiles(t, dir); len(files) != 1 {
		t.Fatalf("expected a single file after rewrite, got %v", files)
	}

	// a plain file at the destination is replaced too
	file := filepath.Join(t.TempDir(), "flat")
	if err := os.WriteFile(file, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Write(tbl, tbl.Schema(), Parquet, file, nil); err != nil {
		t.Fatalf("Write() over file error = %v", err)
	}
	if len(parquetFiles(t, file)) != 1 {
		t.Fatal("expected dataset directory in place of the file")
	}
}

func TestCastFailureKeepsPreviousOutput(t *testing.T) {
	good := sampleTable(t)
	base := filepath.Join(t.TempDir(), "out")
	path, err := Write(good, good.Schema(), CSV, base, nil)
	if err != nil {
		t.Fatal(err)
	}

	bad := table.New()
	_ = bad.Set(table.Column{Name: "d", Type: schema.Date32Type(), Values: []any{"31/01/2024"}})
	if _, err := Write(bad, bad.Schema(), CSV, base, nil); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("error = %v, want ErrSchemaMismatch", err)
	}

	data, err := os.ReadFile(path)
	if err != nil || !strings.HasPrefix(string(data), "id,qty") {
		t.Fatalf("previous output lost: %q, %v", data, err)
	}
}

func TestPartitionValueEscaping(t *testing.T) {
	for _, v := range []string{"plain", "with space", "a/b", "2024-01-31 10:11:12"} {
		esc := escapePartitionValue(v)
		if strings.Contains(esc, "/") {
			t.Errorf("escaped %q contains a separator: %q", v, esc)
		}
		if back := UnescapePartitionValue(esc); back != v {
			t.Errorf("UnescapePartitionValue(%q) = %q, want %q", esc, back, v)
		}
	}
	if escapePartitionValue("") != hiveDefaultPartition {
		t.Error("empty value should map to the default partition")
	}
}

func parquetFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".parquet") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walking %s: %v", dir, err)
	}
	return files
}

func readParquet(t *testing.T, path string) arrow.Table {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	mem := memory.DefaultAllocator
	tbl, err := pqarrow.ReadTable(context.Background(), f, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return tbl
}

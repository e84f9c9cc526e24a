package generator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rmugicag/pyquet/catalog"
	"github.com/rmugicag/pyquet/dataset"
	"github.com/rmugicag/pyquet/schema"
	"github.com/rmugicag/pyquet/table"
)

var fixedNow = time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)

type logRecorder struct {
	lines []string
}

func (r *logRecorder) logf(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *logRecorder) contains(s string) bool {
	for _, l := range r.lines {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

func newTestGenerator(cat catalog.Catalog, numRows int, limit bool) (*DataGenerator, *logRecorder) {
	rec := &logRecorder{}
	g := New(Config{
		Catalog:   cat,
		NumRows:   numRows,
		LimitRows: limit,
		Rand:      rand.New(rand.NewSource(42)),
		Now:       func() time.Time { return fixedNow },
		Logf:      rec.logf,
	})
	return g, rec
}

func sixFieldSchema() schema.Definition {
	return schema.Definition{
		Name:         "t_six",
		PhysicalPath: "unused",
		Fields: []schema.Field{
			{Name: "alphanumeric_field", LogicalFormat: "ALPHANUMERIC(10)"},
			{Name: "numeric_field", LogicalFormat: "NUMERIC SHORT"},
			{Name: "decimal_field", LogicalFormat: "DECIMAL(10,2)"},
			{Name: "date_field", LogicalFormat: "DATE"},
			{Name: "timestamp_field", LogicalFormat: "TIMESTAMP"},
			{Name: "time_field", LogicalFormat: "TIME"},
		},
	}
}

func TestNewRowCount(t *testing.T) {
	three := catalog.Catalog{"a": {"x"}, "b": {1, 2, 3}}
	cases := []struct {
		name    string
		cat     catalog.Catalog
		numRows int
		limit   bool
		want    int
	}{
		{"default", nil, 0, false, DefaultNumRows},
		{"explicit", nil, 5, false, 5},
		{"negative", nil, -1, false, DefaultNumRows},
		{"catalog limit", three, 50, true, 3},
		{"catalog no limit", three, 7, false, 7},
		{"limit without catalog", nil, 4, true, 4},
		{"limit with empty lists", catalog.Catalog{"a": {}}, 6, true, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, _ := newTestGenerator(tc.cat, tc.numRows, tc.limit)
			if g.RowCount != tc.want {
				t.Fatalf("RowCount = %d, want %d", g.RowCount, tc.want)
			}
		})
	}
}

func TestGenerateAlphanumeric(t *testing.T) {
	g, _ := newTestGenerator(nil, 50, false)
	values := g.GenerateAlphanumeric("code", 12)
	if len(values) != 50 {
		t.Fatalf("len = %d", len(values))
	}
	for _, v := range values {
		s := v.(string)
		if len(s) != 12 {
			t.Fatalf("%q has length %d", s, len(s))
		}
		for _, r := range s {
			if !strings.ContainsRune(alphanumericChars, r) {
				t.Fatalf("%q contains %q", s, r)
			}
		}
	}
}

func TestCatalogCycling(t *testing.T) {
	cat := catalog.Catalog{"code": {"A", "B"}, "qty": {int64(7)}}
	g, _ := newTestGenerator(cat, 5, false)

	codes := g.GenerateAlphanumeric("code", 3)
	qty := g.GenerateInt("qty", DefaultIntSize)
	for i := 0; i < 5; i++ {
		if codes[i] != cat["code"][i%2] {
			t.Errorf("code[%d] = %v", i, codes[i])
		}
		if qty[i] != int64(7) {
			t.Errorf("qty[%d] = %v", i, qty[i])
		}
	}
}

func TestEmptyCatalogEntryFallsBackToSynthetic(t *testing.T) {
	g, _ := newTestGenerator(catalog.Catalog{"code": {}}, 3, false)
	for _, v := range g.GenerateAlphanumeric("code", 4) {
		if s, ok := v.(string); !ok || len(s) != 4 {
			t.Fatalf("value = %#v", v)
		}
	}
}

func TestGenerateInt(t *testing.T) {
	g, _ := newTestGenerator(nil, 200, false)
	for _, v := range g.GenerateInt("n", 5) {
		if n := v.(int64); n < 0 || n > 5 {
			t.Fatalf("%d outside [0, 5]", n)
		}
	}
}

func TestGenerateDecimal(t *testing.T) {
	g, _ := newTestGenerator(nil, 200, false)
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(10), nil)

	for _, v := range g.GenerateDecimal("amount", 10, 2) {
		d, ok := v.(table.Decimal)
		if !ok {
			t.Fatalf("value %#v is not a table.Decimal", v)
		}
		if d.Scale != 2 {
			t.Fatalf("scale = %d", d.Scale)
		}
		n := d.Num.BigInt()
		if n.Sign() < 0 || n.Cmp(limit) >= 0 {
			t.Fatalf("unscaled %s outside [0, 10^10)", n)
		}
		s := d.String()
		if frac := s[strings.Index(s, ".")+1:]; len(frac) != 2 {
			t.Fatalf("%s does not have 2 fraction digits", s)
		}
	}
}

func TestGenerateTemporalRanges(t *testing.T) {
	g, _ := newTestGenerator(nil, 100, false)
	oldest := fixedNow.AddDate(0, 0, -maxDayOffset)

	dates, err := g.GenerateDate("d")
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range dates {
		d := v.(time.Time)
		if d.Hour() != 0 || d.Minute() != 0 || d.Location() != time.UTC {
			t.Fatalf("date %v is not a plain date", d)
		}
		if d.Before(oldest.Truncate(24*time.Hour)) || d.After(fixedNow) {
			t.Fatalf("date %v out of range", d)
		}
	}

	stamps, err := g.GenerateTimestamp("ts")
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range stamps {
		ts := v.(time.Time)
		if ts.Nanosecond() != 0 {
			t.Fatalf("timestamp %v keeps sub-second precision", ts)
		}
		if ts.Before(oldest.Add(-24*time.Hour)) || ts.After(fixedNow) {
			t.Fatalf("timestamp %v out of range", ts)
		}
	}

	times, err := g.GenerateTime("tm")
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range times {
		tm := v.(time.Time)
		if tm.Year() != 0 {
			t.Fatalf("time %v carries a date", tm)
		}
	}
}

func TestCatalogTemporalTokens(t *testing.T) {
	cat := catalog.Catalog{
		"d":   {"2020-01-01", time.Date(2021, 5, 6, 23, 59, 0, 0, time.UTC), nil},
		"bad": {"01/01/2020"},
	}
	g, _ := newTestGenerator(cat, 3, false)

	dates, err := g.GenerateDate("d")
	if err != nil {
		t.Fatal(err)
	}
	if got := dates[1].(time.Time).Format(table.DateLayout); got != "2021-05-06" {
		t.Errorf("dates[1] = %s", got)
	}
	if dates[2] != nil {
		t.Errorf("dates[2] = %v, want nil", dates[2])
	}

	_, err = g.GenerateDate("bad")
	var ce *table.CastError
	if !errors.As(err, &ce) || ce.Column != "bad" || ce.Row != 0 {
		t.Fatalf("error = %v, want *table.CastError for bad", err)
	}
}

func TestMergeFixedValuesKeepsRowCount(t *testing.T) {
	g, _ := newTestGenerator(catalog.Catalog{"a": {"x", "y"}}, 10, true)
	g.MergeFixedValues(catalog.Catalog{"a": {"z"}, "b": {"1", "2", "3", "4"}})

	if g.RowCount != 2 {
		t.Fatalf("RowCount = %d, want 2", g.RowCount)
	}
	if got := g.GenerateAlphanumeric("a", 1); got[0] != "z" || got[1] != "z" {
		t.Fatalf("fixed values not applied: %v", got)
	}
}

func TestSixFieldCSVScenario(t *testing.T) {
	g, rec := newTestGenerator(nil, 10, false)
	dest := filepath.Join(t.TempDir(), "six")

	res, err := g.Generate(sixFieldSchema(), Request{OutputType: "csv", DestinationPath: dest})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !res.Written || res.Path != dest+".csv" {
		t.Fatalf("result = %+v", res)
	}
	if !rec.contains("Writing data in: " + dest) {
		t.Errorf("missing write diagnostic: %v", rec.lines)
	}
	if !rec.contains("Output schema:\nalphanumeric_field: string\n") || !rec.contains("decimal_field: decimal128(10, 2)\n") {
		t.Errorf("missing schema diagnostic: %v", rec.lines)
	}

	f, err := os.Open(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 11 {
		t.Fatalf("rows = %d, want 11", len(rows))
	}
	for _, r := range rows {
		if len(r) != 6 {
			t.Fatalf("row has %d columns", len(r))
		}
	}
	if rows[0][0] != "alphanumeric_field" {
		t.Fatalf("header = %v", rows[0])
	}
	for _, r := range rows[1:] {
		if len(r[0]) != 10 {
			t.Errorf("alphanumeric_field %q is not 10 characters", r[0])
		}
		if _, err := time.Parse(table.TimestampLayout, r[4]); err != nil {
			t.Errorf("timestamp_field %q: %v", r[4], err)
		}
	}

	wantTypes := []string{"string", "int64", "decimal128(10, 2)", "date32", "timestamp[ms]", "time32[ms]"}
	for i, f := range res.Schema.Fields {
		if f.Type.String() != wantTypes[i] {
			t.Errorf("field %s type = %s, want %s", f.Name, f.Type, wantTypes[i])
		}
	}
}

func TestCatalogPartitionScenario(t *testing.T) {
	cat := catalog.Catalog{"gf_cutoff_date": {"2020-01-01", "2020-02-01", "2020-03-01"}}
	g, _ := newTestGenerator(cat, 10, true)
	def := schema.Definition{
		Name: "t_cutoff",
		Fields: []schema.Field{
			{Name: "id", LogicalFormat: "ALPHANUMERIC(4)"},
			{Name: "gf_cutoff_date", LogicalFormat: "DATE"},
		},
	}
	dir := t.TempDir()

	res, err := g.Generate(def, Request{OutputType: "parquet", Partitions: []string{"gf_cutoff_date"}, DestinationDir: dir})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Table.RowCount() != 3 {
		t.Fatalf("rows = %d, want 3", res.Table.RowCount())
	}
	if res.Path != filepath.Join(dir, "t_cutoff") {
		t.Fatalf("path = %s", res.Path)
	}

	entries, err := os.ReadDir(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	want := []string{"gf_cutoff_date=2020-01-01", "gf_cutoff_date=2020-02-01", "gf_cutoff_date=2020-03-01"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("partition dirs = %v, want %v", names, want)
	}
}

func TestUnknownTypeScenario(t *testing.T) {
	g, rec := newTestGenerator(nil, 4, false)
	def := schema.Definition{Name: "t", Fields: []schema.Field{
		{Name: "keep", LogicalFormat: "NUMERIC SHORT"},
		{Name: "mystery", LogicalFormat: "UNKNOWN_TYPE"},
	}}

	res, err := g.Generate(def, Request{OutputType: "csv", DestinationPath: filepath.Join(t.TempDir(), "out")})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if _, ok := res.Table.Column("mystery"); ok {
		t.Error("mystery column should be absent from the table")
	}
	if res.Schema.FieldIndex("mystery") >= 0 || res.Schema.Len() != 1 {
		t.Errorf("schema = %v", res.Schema.Names())
	}
	if !rec.contains("Unrecognized logicalFormat: UNKNOWN_TYPE") {
		t.Errorf("missing diagnostic: %v", rec.lines)
	}
}

func TestUnknownOutputTypeScenario(t *testing.T) {
	g, rec := newTestGenerator(nil, 4, false)
	dest := filepath.Join(t.TempDir(), "sub", "out")

	res, err := g.Generate(sixFieldSchema(), Request{OutputType: "xml", DestinationPath: dest})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Written || res.Path != dest {
		t.Fatalf("result = %+v", res)
	}
	if _, err := os.Stat(filepath.Dir(dest)); !os.IsNotExist(err) {
		t.Error("nothing should be created for an unknown output type")
	}
	if !rec.contains("Unrecognized output type: xml Valid options are: csv, parquet") {
		t.Errorf("missing diagnostic: %v", rec.lines)
	}
}

func TestMalformedFormatFails(t *testing.T) {
	g, _ := newTestGenerator(nil, 4, false)
	dest := filepath.Join(t.TempDir(), "out")
	def := schema.Definition{Name: "t", Fields: []schema.Field{{Name: "a", LogicalFormat: "ALPHANUMERIC(x)"}}}

	_, err := g.Generate(def, Request{OutputType: "csv", DestinationPath: dest})
	if !errors.Is(err, schema.ErrMalformedFormat) {
		t.Fatalf("error = %v, want ErrMalformedFormat", err)
	}
	if _, err := os.Stat(dest + ".csv"); !os.IsNotExist(err) {
		t.Error("no output expected")
	}
}

func TestUnknownPartitionFails(t *testing.T) {
	g, _ := newTestGenerator(nil, 4, false)
	dest := filepath.Join(t.TempDir(), "out")

	_, err := g.Generate(sixFieldSchema(), Request{OutputType: "parquet", Partitions: []string{"nope"}, DestinationPath: dest})
	if !errors.Is(err, dataset.ErrUnknownPartition) {
		t.Fatalf("error = %v, want ErrUnknownPartition", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("no output expected")
	}
}

func TestPartitionOnlySchemaFails(t *testing.T) {
	cat := catalog.Catalog{"d": {"2020-01-01", "2020-02-01", "2020-03-01"}}
	g, _ := newTestGenerator(cat, 10, true)
	def := schema.Definition{Name: "t_dates", Fields: []schema.Field{{Name: "d", LogicalFormat: "DATE"}}}
	dest := filepath.Join(t.TempDir(), "out")

	_, err := g.Generate(def, Request{OutputType: "parquet", Partitions: []string{"d"}, DestinationPath: dest})
	if !errors.Is(err, dataset.ErrNoDataColumns) {
		t.Fatalf("error = %v, want ErrNoDataColumns", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("no output expected")
	}

	res, err := g.Generate(def, Request{OutputType: "csv", Partitions: []string{"d"}, DestinationPath: dest})
	if err != nil || !res.Written || res.Table.RowCount() != 3 {
		t.Fatalf("csv ignores partitions: res = %+v, err = %v", res, err)
	}
}

func TestRepeatedPartitionFails(t *testing.T) {
	g, _ := newTestGenerator(nil, 4, false)
	dest := filepath.Join(t.TempDir(), "out")

	_, err := g.Generate(sixFieldSchema(), Request{OutputType: "parquet", Partitions: []string{"date_field", "date_field"}, DestinationPath: dest})
	if !errors.Is(err, dataset.ErrDuplicatePartition) {
		t.Fatalf("error = %v, want ErrDuplicatePartition", err)
	}
}

func TestGenerateTwiceOverwrites(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")

	for _, out := range []string{"parquet", "csv"} {
		for i := 0; i < 2; i++ {
			g, _ := newTestGenerator(nil, 5, false)
			if _, err := g.Generate(sixFieldSchema(), Request{OutputType: out, DestinationPath: dest}); err != nil {
				t.Fatalf("%s run %d: %v", out, i, err)
			}
		}
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("parquet dataset has %d entries after two runs", len(entries))
	}
	data, err := os.ReadFile(dest + ".csv")
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 6 {
		t.Fatalf("csv has %d lines, want 6", lines)
	}
}

func TestDuplicateFieldLastWins(t *testing.T) {
	g, _ := newTestGenerator(nil, 3, false)
	def := schema.Definition{Name: "t", Fields: []schema.Field{
		{Name: "a", LogicalFormat: "ALPHANUMERIC(2)"},
		{Name: "b", LogicalFormat: "NUMERIC SHORT"},
		{Name: "a", LogicalFormat: "DATE"},
	}}

	res, err := g.Generate(def, Request{OutputType: "none"})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(res.Schema.Names(), ","); got != "a,b" {
		t.Fatalf("names = %s", got)
	}
	if res.Schema.Fields[0].Type != schema.Date32Type() {
		t.Fatalf("a type = %s, want date32", res.Schema.Fields[0].Type)
	}
}

func TestGenerateFile(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.json")
	content := `{"name": "t_file", "physicalPath": "` + filepath.ToSlash(filepath.Join(dir, "phys")) + `",
  "fields": [{"name": "id", "logicalFormat": "ALPHANUMERIC(3)"}]}`
	if err := os.WriteFile(schemaPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	g, _ := newTestGenerator(nil, 2, false)
	res, err := g.GenerateFile(schemaPath, Request{OutputType: "csv"})
	if err != nil {
		t.Fatalf("GenerateFile() error = %v", err)
	}
	if res.Path != filepath.Join(dir, "phys")+".csv" {
		t.Fatalf("path = %s", res.Path)
	}
	if _, err := os.Stat(res.Path); err != nil {
		t.Fatal(err)
	}
}

func TestOutputSchemaMatchesGenerate(t *testing.T) {
	def := sixFieldSchema()
	def.Fields = append(def.Fields,
		schema.Field{Name: "skip", LogicalFormat: "UNKNOWN_TYPE"},
		schema.Field{Name: def.Fields[0].Name, LogicalFormat: "DATE"},
	)

	s, err := OutputSchema(def)
	if err != nil {
		t.Fatalf("OutputSchema() error = %v", err)
	}
	g, _ := newTestGenerator(nil, 2, false)
	res, err := g.Generate(def, Request{OutputType: "none"})
	if err != nil {
		t.Fatal(err)
	}
	if s.String() != res.Schema.String() {
		t.Fatalf("OutputSchema:\n%s\nGenerate:\n%s", s, res.Schema)
	}

	def.Fields = append(def.Fields, schema.Field{Name: "bad", LogicalFormat: "DECIMAL(x)"})
	if _, err := OutputSchema(def); !errors.Is(err, schema.ErrMalformedFormat) {
		t.Fatalf("expected ErrMalformedFormat, got %v", err)
	}
}

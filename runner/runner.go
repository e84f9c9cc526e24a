package runner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/rmugicag/pyquet/catalog"
	"github.com/rmugicag/pyquet/database"
	"github.com/rmugicag/pyquet/dataset"
	"github.com/rmugicag/pyquet/generator"
	"github.com/rmugicag/pyquet/loader"
	"github.com/rmugicag/pyquet/validator"
	"gopkg.in/yaml.v3"
)

// Options applies to every job of a run.
type Options struct {
	ContinueOnError bool
	// DefaultNumRows and DefaultDestinationDir fill jobs that leave them
	// unset.
	DefaultNumRows        int
	DefaultDestinationDir string
	Rand                  *rand.Rand
	Now                   func() time.Time
	Logf                  func(format string, args ...any)
	Out                   io.Writer
}

type JobResult struct {
	Name     string
	Path     string
	Rows     int
	Written  bool
	Duration time.Duration
	Err      error
}

// Run executes the jobs of plan in order. It stops at the first failure
// unless ContinueOnError is set, in which case every failure is returned
// joined.
func Run(ctx context.Context, plan *Plan, opts Options) ([]JobResult, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintf(out, "Running %d job(s)...\n", len(plan.Jobs))
	results := make([]JobResult, 0, len(plan.Jobs))
	var errs []error
	for i, job := range plan.Jobs {
		job = plan.resolveJob(job)
		fmt.Fprintf(out, "Running: %s\n", job.label())

		res := RunJob(ctx, job, opts)
		results = append(results, res)
		if res.Err == nil && !res.Written {
			fmt.Fprintf(out, "⚠️  %s: nothing written\n", res.Name)
			continue
		}
		if res.Err == nil {
			fmt.Fprintf(out, "✅ %s: %d rows -> %s (%s)\n", res.Name, res.Rows, res.Path, res.Duration.Round(time.Millisecond))
			continue
		}

		fmt.Fprintf(out, "❌ %s: %v\n", res.Name, res.Err)
		err := fmt.Errorf("job %d (%s): %w", i+1, res.Name, res.Err)
		if !opts.ContinueOnError {
			return results, err
		}
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return results, errors.Join(errs...)
	}
	fmt.Fprintln(out, "✅ All jobs completed.")
	return results, nil
}

func (p *Plan) resolveJob(job Job) Job {
	job.Schema = p.resolve(job.Schema)
	job.Catalog = p.resolve(job.Catalog)
	job.DestinationPath = p.resolve(job.DestinationPath)
	job.DestinationDir = p.resolve(job.DestinationDir)
	return job
}

// RunJob builds the catalog of job, validates the schema against it and
// the partitions, then generates the table and writes it.
func RunJob(ctx context.Context, job Job, opts Options) JobResult {
	start := time.Now()
	res := JobResult{Name: job.label()}

	def, err := loader.LoadSchema(job.Schema)
	if err != nil {
		res.Err = err
		return res
	}
	if job.Name == "" && def.Name != "" {
		res.Name = def.Name
	}

	cat, err := LoadCatalog(ctx, job)
	if err != nil {
		res.Err = err
		return res
	}

	numRows := job.NumRows
	if numRows <= 0 {
		numRows = opts.DefaultNumRows
	}
	g := generator.New(generator.Config{
		Catalog:   cat,
		NumRows:   numRows,
		LimitRows: job.LimitRows,
		Rand:      opts.Rand,
		Now:       opts.Now,
		Logf:      opts.Logf,
	})

	fixed, err := fixedValues(job.FixedValues)
	if err != nil {
		res.Err = err
		return res
	}
	g.MergeFixedValues(fixed)

	partitions := job.Partitions
	if partitions == nil {
		partitions = def.Partitions
	}

	// partitions only shape Parquet output
	var checked []string
	if out, ok := dataset.ParseOutputType(job.OutputType); ok && out == dataset.Parquet {
		checked = partitions
	}
	if err := validator.ValidateDefinition(def, checked, cat.Merge(fixed)).Err(); err != nil {
		res.Err = fmt.Errorf("invalid job: %w", err)
		res.Duration = time.Since(start)
		return res
	}

	destDir := job.DestinationDir
	if destDir == "" {
		destDir = opts.DefaultDestinationDir
	}

	out, err := g.Generate(def, generator.Request{
		OutputType:      job.OutputType,
		Partitions:      partitions,
		DestinationPath: job.DestinationPath,
		DestinationDir:  destDir,
	})
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	res.Path = out.Path
	res.Rows = out.Table.RowCount()
	res.Written = out.Written
	return res
}

// LoadCatalog reads the catalog file of job and, when a query is set, the
// catalog it returns. Query columns override file fields of the same name.
func LoadCatalog(ctx context.Context, job Job) (catalog.Catalog, error) {
	cat := catalog.Catalog{}
	if job.Catalog != "" {
		fileCat, err := loader.LoadCatalog(job.Catalog)
		if err != nil {
			return nil, err
		}
		cat = fileCat
	}
	if job.CatalogQuery == "" {
		return cat, nil
	}

	var db *sql.DB
	var err error
	if job.CatalogDSN != "" {
		db, err = database.Open(ctx, job.CatalogDSN)
		if err == nil {
			defer db.Close()
		}
	} else {
		db, err = database.GetDB()
	}
	if err != nil {
		return nil, fmt.Errorf("catalog database: %w", err)
	}

	queryCat, err := catalog.FromQuery(ctx, db, job.CatalogQuery)
	if err != nil {
		return nil, err
	}
	return cat.Merge(queryCat), nil
}

func fixedValues(n yaml.Node) (catalog.Catalog, error) {
	switch n.Kind {
	case 0:
		return catalog.Catalog{}, nil
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return catalog.Catalog{}, nil
		}
		return loader.ParseFixedValues(n.Value)
	}
	data, err := yaml.Marshal(&n)
	if err != nil {
		return nil, fmt.Errorf("error reading fixed values: %w", err)
	}
	return loader.ParseCatalog(data)
}

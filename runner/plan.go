package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Plan is a list of generation jobs read from a YAML or JSON file.
type Plan struct {
	Jobs []Job `yaml:"jobs"`
	// Dir is the directory relative paths in jobs are resolved against.
	Dir string `yaml:"-"`
}

// Job is one generator run.
type Job struct {
	Name            string   `yaml:"name"`
	Schema          string   `yaml:"schema"`
	OutputType      string   `yaml:"output_type"`
	Partitions      []string `yaml:"partitions"`
	DestinationPath string   `yaml:"destination_path"`
	DestinationDir  string   `yaml:"destination_dir"`
	Catalog         string   `yaml:"catalog"`
	CatalogQuery    string   `yaml:"catalog_query"`
	CatalogDSN      string   `yaml:"catalog_dsn"`
	NumRows         int      `yaml:"num_rows"`
	LimitRows       bool     `yaml:"limit_rows"`
	// FixedValues is either an inline mapping or a string holding one.
	FixedValues yaml.Node `yaml:"fixed_values"`
}

func (j Job) label() string {
	if j.Name != "" {
		return j.Name
	}
	return j.Schema
}

// LoadPlan reads the plan file at path.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading plan file: %w", err)
	}
	plan, err := ParsePlan(data)
	if err != nil {
		return nil, err
	}
	plan.Dir = filepath.Dir(path)
	return plan, nil
}

func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("error parsing plan: %w", err)
	}
	if len(plan.Jobs) == 0 {
		return nil, fmt.Errorf("plan has no jobs")
	}
	for i, job := range plan.Jobs {
		if job.Schema == "" {
			return nil, fmt.Errorf("job %d (%s): schema is required", i+1, job.Name)
		}
	}
	return &plan, nil
}

// resolve returns p relative to the plan directory unless it is absolute.
func (p *Plan) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || p.Dir == "" {
		return path
	}
	return filepath.Join(p.Dir, path)
}

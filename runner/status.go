package runner

import (
	"fmt"
	"os"

	"github.com/rmugicag/pyquet/dataset"
	"github.com/rmugicag/pyquet/loader"
)

// JobStatus tells whether the output of a job is already on disk.
type JobStatus struct {
	Name   string
	Path   string
	Exists bool
	Err    error
}

// Status resolves where every job of plan writes and checks for existing
// output. Nothing is generated.
func Status(plan *Plan, opts Options) []JobStatus {
	statuses := make([]JobStatus, 0, len(plan.Jobs))
	for _, job := range plan.Jobs {
		job = plan.resolveJob(job)
		st := JobStatus{Name: job.label()}

		def, err := loader.LoadSchema(job.Schema)
		if err != nil {
			st.Err = err
			statuses = append(statuses, st)
			continue
		}
		if job.Name == "" && def.Name != "" {
			st.Name = def.Name
		}

		destDir := job.DestinationDir
		if destDir == "" {
			destDir = opts.DefaultDestinationDir
		}
		st.Path = dataset.ResolvePath(def, job.DestinationPath, destDir)

		out, ok := dataset.ParseOutputType(job.OutputType)
		switch {
		case !ok:
			st.Err = fmt.Errorf("unrecognized output type %q", job.OutputType)
		case out == dataset.CSV:
			st.Path = dataset.CSVPath(st.Path)
		}
		if st.Err == nil {
			_, err := os.Stat(st.Path)
			st.Exists = err == nil
		}
		statuses = append(statuses, st)
	}
	return statuses
}

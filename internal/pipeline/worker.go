package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/lessonfmt/internal/render"
	"github.com/dgallion1/lessonfmt/internal/source"
)

// Worker converts one uploaded file per job.
type Worker struct {
	renderer *render.Renderer
	log      *slog.Logger
	opts     source.Options
}

func NewWorker(r *render.Renderer, log *slog.Logger, opts source.Options) *Worker {
	return &Worker{renderer: r, log: log, opts: opts}
}

// Process runs import, parse and render for a job. Failures are recorded on
// the job; Process itself never fails.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Import
	job.SetStatus(StatusImporting, "importing")
	imp, err := source.ForFile(job.Filename, w.opts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "importing")
		return
	}
	doc, err := imp.Import(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("import failed", "error", err)
		job.AddError(fmt.Sprintf("import: %s", err))
		job.SetStatus(StatusFailed, "importing")
		return
	}
	job.releaseFile()
	if ctx.Err() != nil {
		job.AddError("cancelled")
		job.SetStatus(StatusFailed, "importing")
		return
	}

	title := job.Title
	if title == "" {
		title = doc.Title
	}

	// Phase 2: Segment and parse
	job.SetStatus(StatusParsing, "parsing")
	built, err := Build(Input{Title: title, Text: doc.Text, Sessions: job.Sessions, Context: job.Context})
	if err != nil {
		log.Error("build failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	log.Info("parsed document", "sessions", len(built.Sessions), "chars", len(doc.Text))

	// Phase 3: Render
	job.SetStatus(StatusRendering, "rendering")
	res := newResult(built, w.renderer.Render(built))
	job.SetResult(res)
	log.Info("rendered document", "content_hash", res.ContentHash)

	job.SetStatus(StatusCompleted, "done")
}

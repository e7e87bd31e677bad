// Package ingest bulk-uploads folders of documents into agent vector
// stores. The layout convention is one subdirectory per agent:
//
//	docs/
//	  comercial/  tarifas.pdf  condiciones.docx
//	  soporte/    faq.md
//
// Every attempt lands in the upload log, so the TUI's history view shows
// batch runs alongside interactive uploads.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fragmede/parley/internal/api"
	"github.com/fragmede/parley/internal/cache"
	"github.com/fragmede/parley/internal/logging"
)

const defaultWorkers = 4

// Options controls a batch run.
type Options struct {
	// Root is the directory whose subdirectories name the target agents.
	Root string
	// Agents limits the run to these agents. Empty means every subdirectory.
	Agents []string
	// Workers bounds concurrent uploads.
	Workers int
}

// Result summarizes a batch run.
type Result struct {
	BatchID string
	OK      int
	Skipped int
	Failed  int
}

type job struct {
	agent string
	path  string
}

// Run uploads every ingestable file under root and returns the tally.
// Individual upload failures don't abort the batch; they are counted,
// recorded and reported.
func Run(ctx context.Context, client *api.Client, db *cache.DB, opts Options) (*Result, error) {
	log := logging.Get()

	res := &Result{BatchID: uuid.NewString()}
	jobs, skipped, err := collectJobs(db, opts, res.BatchID)
	if err != nil {
		return nil, err
	}
	res.Skipped = skipped
	if len(jobs) == 0 && skipped == 0 {
		fmt.Println("nothing to ingest")
		return res, nil
	}
	log.Info().Str("batch_id", res.BatchID).Int("files", len(jobs)).Msg("starting ingest batch")

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, j := range jobs {
		j := j
		g.Go(func() error {
			name := filepath.Base(j.path)
			upload := &cache.Upload{
				BatchID:  res.BatchID,
				Agent:    j.agent,
				Filename: name,
			}

			out, err := client.UploadDocument(ctx, j.agent, j.path)
			if err != nil {
				upload.Status = cache.UploadFailed
				upload.Error = err.Error()
				color.Red("  ✗ %s/%s: %v", j.agent, name, err)
				mu.Lock()
				res.Failed++
				mu.Unlock()
			} else {
				upload.Status = cache.UploadOK
				upload.VectorStore = out.VectorStore
				color.Green("  ✓ %s/%s → %s", j.agent, name, out.VectorStore)
				mu.Lock()
				res.OK++
				mu.Unlock()
			}

			if err := db.RecordUpload(upload); err != nil {
				log.Error().Err(err).Str("file", name).Msg("recording upload")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("uploaded %d, skipped %d, failed %d", res.OK, res.Skipped, res.Failed)
	if res.Failed > 0 {
		color.Red("%s", summary)
	} else {
		color.Green("%s", summary)
	}
	log.Info().Str("batch_id", res.BatchID).
		Int("ok", res.OK).Int("skipped", res.Skipped).Int("failed", res.Failed).
		Msg("ingest batch finished")
	return res, nil
}

// collectJobs walks the agent subdirectories and splits files into
// uploadable jobs and skipped records.
func collectJobs(db *cache.DB, opts Options, batchID string) ([]job, int, error) {
	entries, err := os.ReadDir(opts.Root)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", opts.Root, err)
	}

	wanted := make(map[string]bool, len(opts.Agents))
	for _, a := range opts.Agents {
		wanted[a] = true
	}

	var jobs []job
	skipped := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		agent := entry.Name()
		if len(wanted) > 0 && !wanted[agent] {
			continue
		}

		dir := filepath.Join(opts.Root, agent)
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, 0, fmt.Errorf("reading %s: %w", dir, err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			if !api.ExtensionAllowed(f.Name()) {
				color.Yellow("  - %s/%s: extension not ingestable", agent, f.Name())
				if err := db.RecordUpload(&cache.Upload{
					BatchID:  batchID,
					Agent:    agent,
					Filename: f.Name(),
					Status:   cache.UploadSkipped,
				}); err != nil {
					logging.Get().Error().Err(err).Str("file", f.Name()).Msg("recording skip")
				}
				skipped++
				continue
			}
			jobs = append(jobs, job{agent: agent, path: filepath.Join(dir, f.Name())})
		}
	}
	return jobs, skipped, nil
}

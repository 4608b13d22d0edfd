package install

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/levelshelf/internal/catalog"
	"github.com/blackwell-systems/levelshelf/internal/remote"
)

// JobStatus is the lifecycle state of a Job.
type JobStatus int32

const (
	JobPending JobStatus = iota
	JobRunning
	JobSucceeded
	JobFailed
)

func (s JobStatus) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobRunning:
		return "running"
	case JobSucceeded:
		return "succeeded"
	case JobFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Job tracks one download-and-install. Written and Status may be read from
// any goroutine while the job runs.
type Job struct {
	ID      uuid.UUID
	LevelID string
	URL     string
	// Total is the expected archive size, or -1 when unknown.
	Total int64

	written atomic.Int64
	status  atomic.Int32

	// Set once the job is terminal.
	Level  *catalog.Level
	Err    error
	SHA256 string
}

func newJob(levelID, url string, total int64) *Job {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &Job{ID: id, LevelID: levelID, URL: url, Total: total}
}

// Written returns the number of archive bytes received so far.
func (j *Job) Written() int64 { return j.written.Load() }

// Status returns the current state.
func (j *Job) Status() JobStatus { return JobStatus(j.status.Load()) }

// Done reports whether the job reached a terminal state.
func (j *Job) Done() bool {
	s := j.Status()
	return s == JobSucceeded || s == JobFailed
}

// Fraction returns download progress in [0, 1], or 0 when the size is
// unknown.
func (j *Job) Fraction() float64 {
	if j.Total <= 0 {
		return 0
	}
	f := float64(j.Written()) / float64(j.Total)
	if f > 1 {
		return 1
	}
	return f
}

// ProgressFunc is called as archive bytes arrive.
type ProgressFunc func(j *Job)

// progressReader counts and hashes bytes into the job as they are read.
type progressReader struct {
	r   io.Reader
	h   hash.Hash
	job *Job
	fn  ProgressFunc
}

func newProgressReader(r io.Reader, job *Job, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, h: sha256.New(), job: job, fn: fn}
}

func (p *progressReader) Read(b []byte) (n int, err error) {
	n, err = p.r.Read(b)
	if n > 0 {
		p.h.Write(b[:n]) //nolint:errcheck // hash.Write never errors
		p.job.written.Add(int64(n))
		if p.fn != nil {
			p.fn(p.job)
		}
	}
	return
}

// ArchiveSource opens level archives by ID.
type ArchiveSource interface {
	Archive(ctx context.Context, id string) (*remote.Archive, error)
}

// Downloader fetches remote archives and installs them.
type Downloader struct {
	src      ArchiveSource
	pipeline *Pipeline
	log      zerolog.Logger
}

// NewDownloader creates a Downloader.
func NewDownloader(src ArchiveSource, p *Pipeline, log zerolog.Logger) *Downloader {
	return &Downloader{src: src, pipeline: p, log: log}
}

// Fetch downloads and installs the level. The returned job is terminal; its
// Err matches the returned error.
func (d *Downloader) Fetch(ctx context.Context, id string, onProgress ProgressFunc) (*Job, error) {
	a, err := d.src.Archive(ctx, id)
	if err != nil {
		job := newJob(id, "", -1)
		job.Err = err
		job.status.Store(int32(JobFailed))
		return job, err
	}
	defer func() { _ = a.Body.Close() }()

	job := newJob(id, a.URL, a.Size)
	return job, d.run(ctx, job, a.Body, onProgress)
}

// InstallFrom installs from an already resolved source.
func (d *Downloader) InstallFrom(ctx context.Context, id string, src *Source, onProgress ProgressFunc) (*Job, error) {
	job := newJob(id, src.Name, src.Size)
	rc, err := src.Open()
	if err != nil {
		job.Err = fmt.Errorf("opening %s: %w", src.Name, err)
		job.status.Store(int32(JobFailed))
		return job, job.Err
	}
	defer func() { _ = rc.Close() }()
	return job, d.run(ctx, job, rc, onProgress)
}

func (d *Downloader) run(ctx context.Context, job *Job, r io.Reader, onProgress ProgressFunc) error {
	job.status.Store(int32(JobRunning))
	d.log.Debug().Str("job", job.ID.String()).Str("id", job.LevelID).Str("url", job.URL).Msg("download started")

	pr := newProgressReader(r, job, onProgress)
	level, err := d.pipeline.Install(ctx, job.LevelID, pr)
	job.SHA256 = hex.EncodeToString(pr.h.Sum(nil))
	if err != nil {
		job.Err = err
		job.status.Store(int32(JobFailed))
		return err
	}
	job.Level = level
	job.status.Store(int32(JobSucceeded))
	return nil
}

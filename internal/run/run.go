// Package run lays out a run's output tree and persists its metadata.
package run

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/futureCreator/qcflow/internal/project"
	"github.com/futureCreator/qcflow/internal/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// TimeLayout is the timestamp suffix of a run root.
	TimeLayout = "20060102-150405"

	MetaFile     = "run.json"
	ErrorLogFile = "errors.log"
	LogFile      = "qcflow.log"
	LatestLink   = "latest"
)

// Run is one batch execution and its output root.
type Run struct {
	ID   string
	Dir  string
	Meta Meta
}

// Meta holds metadata about a run, persisted to run.json.
type Meta struct {
	ID         string           `json:"id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	Input      string           `json:"input"`
	Tag        string           `json:"tag"`
	Workflow   string           `json:"workflow"`
	Workers    int              `json:"workers"`
	Git        *project.GitInfo `json:"git,omitempty"`
	Status     string           `json:"status"` // "running" | "completed"
	Succeeded  int              `json:"succeeded"`
	Failed     int              `json:"failed"`
	Total      int              `json:"total"`
	Timing     *Timing          `json:"timing,omitempty"`
	Items      []ItemRecord     `json:"items,omitempty"`
}

// Timing summarizes per-item wall time in seconds.
type Timing struct {
	Mean   float64 `json:"mean_s"`
	Median float64 `json:"median_s"`
	Max    float64 `json:"max_s"`
	Total  float64 `json:"total_s"`
}

// ItemRecord records the outcome of a single work item.
type ItemRecord struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Descriptor string `json:"descriptor"`
	Status     string `json:"status"`
	FailedStep *int   `json:"failed_step,omitempty"`
	Step       string `json:"step,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// RecordOf converts a result for run.json.
func RecordOf(res types.Result) ItemRecord {
	rec := ItemRecord{
		ID:         res.Item.ID,
		Name:       res.Item.Name,
		Descriptor: res.Item.Descriptor,
		Status:     res.Status.String(),
		Step:       res.StepName,
		DurationMS: res.Duration.Milliseconds(),
		Error:      res.Error,
	}
	if res.FailedStep != types.NoStep && !res.OK() {
		step := res.FailedStep
		rec.FailedStep = &step
	}
	return rec
}

// RootName builds "<stem>_<tag>_<YYYYMMDD-HHMMSS>".
func RootName(stem, tag string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s", sanitizeName(stem), sanitizeName(tag), now.Format(TimeLayout))
}

// New allocates a fresh output root under baseDir. It fails if the root
// already exists so an earlier run is never reused by accident.
func New(baseDir, stem, tag string, now time.Time) (*Run, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.Wrapf(types.ErrFilesystem, "creating output dir %s: %v", baseDir, err)
	}

	dir := filepath.Join(baseDir, RootName(stem, tag, now))
	if err := os.Mkdir(dir, 0755); err != nil {
		if os.IsExist(err) {
			return nil, errors.Wrapf(types.ErrFilesystem, "output root %s already exists", dir)
		}
		return nil, errors.Wrapf(types.ErrFilesystem, "creating output root %s: %v", dir, err)
	}

	id := uuid.NewString()
	r := &Run{
		ID:  id,
		Dir: dir,
		Meta: Meta{
			ID:        id,
			StartedAt: now,
			Tag:       tag,
			Status:    "running",
		},
	}

	if err := r.SaveMeta(); err != nil {
		return nil, errors.Wrapf(types.ErrFilesystem, "writing %s: %v", MetaFile, err)
	}

	if err := updateLatestLink(baseDir, filepath.Base(dir)); err != nil {
		return nil, errors.Wrap(types.ErrFilesystem, err.Error())
	}

	return r, nil
}

// Open loads an existing run root.
func Open(dir string) (*Run, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetaFile))
	if err != nil {
		return nil, err
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", MetaFile, err)
	}
	return &Run{ID: meta.ID, Dir: dir, Meta: meta}, nil
}

// ItemDir returns the directory for item, creating it if needed. An
// existing empty directory is reused. An existing directory with content
// is an error unless overwrite is set, so earlier results are never
// clobbered silently.
func (r *Run) ItemDir(item types.WorkItem, overwrite bool) (string, error) {
	dir := filepath.Join(r.Dir, item.Name)
	err := os.Mkdir(dir, 0755)
	if err == nil {
		return dir, nil
	}
	if !os.IsExist(err) {
		return "", errors.Wrapf(types.ErrFilesystem, "creating item dir %s: %v", dir, err)
	}

	info, statErr := os.Stat(dir)
	if statErr != nil || !info.IsDir() {
		return "", errors.Wrapf(types.ErrFilesystem, "item path %s exists and is not a directory", dir)
	}
	if overwrite {
		return dir, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrapf(types.ErrFilesystem, "reading item dir %s: %v", dir, err)
	}
	if len(entries) > 0 {
		return "", errors.Wrapf(types.ErrFilesystem, "item dir %s already holds results", dir)
	}
	return dir, nil
}

// SaveMeta writes run.json to the run directory.
func (r *Run) SaveMeta() error {
	data, err := json.MarshalIndent(r.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling meta: %w", err)
	}
	return os.WriteFile(r.FilePath(MetaFile), data, 0644)
}

// Complete marks the run as completed at the given time.
func (r *Run) Complete(at time.Time) error {
	r.Meta.Status = "completed"
	r.Meta.FinishedAt = &at
	return r.SaveMeta()
}

// FilePath returns the path to a file within this run directory.
func (r *Run) FilePath(name string) string {
	return filepath.Join(r.Dir, name)
}

// ErrorLogPath is the shared error log of the run.
func (r *Run) ErrorLogPath() string {
	return r.FilePath(ErrorLogFile)
}

// updateLatestLink atomically updates the "latest" symlink.
func updateLatestLink(baseDir, name string) error {
	latestPath := filepath.Join(baseDir, LatestLink)
	tmpPath := latestPath + ".tmp"

	// Remove any stale tmp link
	os.Remove(tmpPath)

	if err := os.Symlink(name, tmpPath); err != nil {
		return fmt.Errorf("creating temp symlink: %w", err)
	}
	if err := os.Rename(tmpPath, latestPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("updating latest symlink: %w", err)
	}
	return nil
}

var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeName keeps a name usable as a single path component.
func sanitizeName(s string) string {
	s = unsafeNameRe.ReplaceAllString(strings.TrimSpace(s), "-")
	s = strings.Trim(s, "-.")
	if s == "" {
		s = "run"
	}
	return s
}

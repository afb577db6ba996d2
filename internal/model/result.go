package model

import (
	"time"

	"github.com/google/uuid"
)

// FileResult is the outcome of processing one map file.
// It is created by the pipeline, filled in by each step, and owned by the
// task processing the file until the batch completes.
type FileResult struct {
	// Path is the absolute path of the map file.
	Path string `json:"path"`

	// Raw and Document are working state for the pipeline steps and are
	// not serialized.
	Raw      []byte       `json:"-"`
	Document *MapDocument `json:"-"`

	// Objects is the number of placed objects parsed from the file.
	Objects int `json:"objects"`

	// Changes are the corrections found by the checker.
	Changes []ChangeRecord `json:"changes,omitempty"`

	// Applied is the number of changes written to disk. It is zero in
	// dry-run mode.
	Applied int `json:"applied"`

	// Invalid holds objects whose category could not be classified.
	Invalid []MapObject `json:"invalid,omitempty"`

	// DigestBefore and DigestAfter are hex SHA3-256 digests of the file
	// content before and after patching. DigestAfter equals DigestBefore
	// when nothing changed.
	DigestBefore string `json:"digest_before,omitempty"`
	DigestAfter  string `json:"digest_after,omitempty"`

	// Err is the failure that stopped processing of this file, if any.
	Err          error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`

	// Skipped is true when the file was never processed because the batch
	// was cancelled first.
	Skipped bool `json:"skipped,omitempty"`

	// Duration is the wall-clock time spent on the file.
	Duration time.Duration `json:"duration"`
}

// NewFileResult creates an empty result for the given path.
func NewFileResult(path string) *FileResult {
	return &FileResult{Path: path}
}

// SetError records the failure that stopped processing.
func (r *FileResult) SetError(err error) {
	r.Err = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// Failed reports whether processing stopped with an error.
func (r *FileResult) Failed() bool {
	return r.Err != nil || r.ErrorMessage != ""
}

// HasInvalid reports whether the file contains unclassifiable objects.
func (r *FileResult) HasInvalid() bool {
	return len(r.Invalid) > 0
}

// FileFailure names a file that could not be processed and why.
type FileFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// RunSummary aggregates the results of one batch run.
type RunSummary struct {
	// ID uniquely identifies the run in the history database.
	ID string `json:"id"`

	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`

	MapsDir    string `json:"maps_dir"`
	ProtoDir   string `json:"proto_dir"`
	ReportFile string `json:"report_file"`
	DryRun     bool   `json:"dry_run"`

	// Prototypes is the number of catalog entries loaded for the run.
	Prototypes int `json:"prototypes"`

	FilesFound   int `json:"files_found"`
	FilesChecked int `json:"files_checked"`
	FilesPatched int `json:"files_patched"`
	FilesFailed  int `json:"files_failed"`
	FilesSkipped int `json:"files_skipped"`

	// Changes counts corrections found; Applied counts those written.
	Changes int `json:"changes"`
	Applied int `json:"applied"`

	InvalidFiles   int `json:"invalid_files"`
	InvalidObjects int `json:"invalid_objects"`

	// ChangesByCategory counts corrections by the category written.
	ChangesByCategory map[Category]int `json:"changes_by_category,omitempty"`

	Failures []FileFailure `json:"failures,omitempty"`

	// Files holds per-file results. Entries for files without changes,
	// invalid objects or errors are kept so history shows every file.
	Files []*FileResult `json:"files,omitempty"`
}

// NewRunID returns a fresh identifier for a run.
func NewRunID() string {
	return uuid.NewString()
}

// NewRunSummary reduces per-file results into run totals.
// Nil entries in results count as skipped files.
func NewRunSummary(id string, startedAt time.Time, results []*FileResult) *RunSummary {
	s := &RunSummary{
		ID:                id,
		StartedAt:         startedAt,
		FilesFound:        len(results),
		ChangesByCategory: make(map[Category]int),
	}

	for _, r := range results {
		if r == nil || r.Skipped {
			s.FilesSkipped++
			continue
		}
		s.Files = append(s.Files, r)

		if r.HasInvalid() {
			s.InvalidFiles++
			s.InvalidObjects += len(r.Invalid)
		}

		if r.Failed() {
			s.FilesFailed++
			s.Failures = append(s.Failures, FileFailure{Path: r.Path, Error: r.ErrorMessage})
			continue
		}

		s.FilesChecked++
		s.Changes += len(r.Changes)
		s.Applied += r.Applied
		if r.Applied > 0 {
			s.FilesPatched++
		}
		for _, c := range r.Changes {
			s.ChangesByCategory[c.To]++
		}
	}

	return s
}

// HasFailures reports whether any file failed.
func (s *RunSummary) HasFailures() bool {
	return s.FilesFailed > 0
}

// Package publish writes the artifacts that summarize a run: the sitemap in
// the output directory and the render report in the rc directory.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/benedict2310/ngxer/internal/blob"
)

const ReportFile = "report.json"

// Report is the persisted record of every materialized route.
type Report struct {
	Timestamp         string   `json:"timestamp" yaml:"timestamp"`
	RunID             string   `json:"runId,omitempty" yaml:"runId,omitempty"`
	IndexRendering    []string `json:"indexRendering" yaml:"indexRendering"`
	PathRendering     []string `json:"pathRendering" yaml:"pathRendering"`
	DatabaseRendering []string `json:"databaseRendering" yaml:"databaseRendering"`
}

// Routes lists every reported route, home pages first.
func (r Report) Routes() []string {
	out := make([]string, 0, len(r.IndexRendering)+len(r.PathRendering)+len(r.DatabaseRendering))
	out = append(out, r.IndexRendering...)
	out = append(out, r.PathRendering...)
	out = append(out, r.DatabaseRendering...)
	return out
}

// Lists groups routes by how they were rendered.
type Lists struct {
	Index    []string
	Path     []string
	Database []string
}

func (l Lists) Empty() bool {
	return len(l.Index) == 0 && len(l.Path) == 0 && len(l.Database) == 0
}

type ReportStore struct {
	files *blob.Store
}

func NewReportStore(rcDir string) *ReportStore {
	return &ReportStore{files: blob.NewStore(rcDir)}
}

func (s *ReportStore) Path() string {
	path, _ := s.files.Path(ReportFile)
	return path
}

// Read returns the persisted report, or an empty one when none was written
// yet.
func (s *ReportStore) Read() (Report, error) {
	b, err := s.files.Get(ReportFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Report{}, nil
		}
		return Report{}, err
	}
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		return Report{}, fmt.Errorf("decode %s: %w", ReportFile, err)
	}
	return r, nil
}

// Write replaces the report with the given lists, stamped with now.
func (s *ReportStore) Write(ctx context.Context, lists Lists, runID string, now time.Time) (Report, error) {
	r := Report{
		Timestamp:         now.UTC().Format(time.RFC3339Nano),
		RunID:             runID,
		IndexRendering:    dedupe(lists.Index),
		PathRendering:     dedupe(lists.Path),
		DatabaseRendering: dedupe(lists.Database),
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return Report{}, fmt.Errorf("encode %s: %w", ReportFile, err)
	}
	if err := s.files.Put(ctx, ReportFile, buf.Bytes()); err != nil {
		return Report{}, err
	}
	return r, nil
}

// Add appends lists to the persisted report.
func (s *ReportStore) Add(ctx context.Context, lists Lists, runID string, now time.Time) (Report, error) {
	current, err := s.Read()
	if err != nil {
		return Report{}, err
	}
	return s.Write(ctx, Lists{
		Index:    append(append([]string{}, current.IndexRendering...), lists.Index...),
		Path:     append(append([]string{}, current.PathRendering...), lists.Path...),
		Database: append(append([]string{}, current.DatabaseRendering...), lists.Database...),
	}, runID, now)
}

// Subtract drops lists from the persisted report.
func (s *ReportStore) Subtract(ctx context.Context, lists Lists, runID string, now time.Time) (Report, error) {
	current, err := s.Read()
	if err != nil {
		return Report{}, err
	}
	return s.Write(ctx, Lists{
		Index:    without(current.IndexRendering, lists.Index),
		Path:     without(current.PathRendering, lists.Path),
		Database: without(current.DatabaseRendering, lists.Database),
	}, runID, now)
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func without(items, drop []string) []string {
	gone := make(map[string]struct{}, len(drop))
	for _, d := range drop {
		gone[d] = struct{}{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := gone[item]; !ok {
			out = append(out, item)
		}
	}
	return out
}

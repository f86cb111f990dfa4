package render

import (
	"context"
	"fmt"

	"github.com/benedict2310/ngxer/internal/publish"
)

// RecordMode says how an outcome changes the persisted report.
type RecordMode int

const (
	// RecordReplace rewrites the report from the outcome alone.
	RecordReplace RecordMode = iota
	// RecordAdd appends materialized routes to the report.
	RecordAdd
	// RecordSubtract drops removed routes from the report.
	RecordSubtract
)

// Record updates <rc>/report.json from out and, when the sitemap is enabled,
// regenerates <out>/sitemap.xml from the resulting report.
func (o *Orchestrator) Record(ctx context.Context, out Outcome, mode RecordMode) (publish.Report, error) {
	now := o.now()
	runID, err := publish.NewRunID(now)
	if err != nil {
		return publish.Report{}, err
	}
	store := publish.NewReportStore(o.project.RCDir)

	var report publish.Report
	switch mode {
	case RecordReplace:
		report, err = store.Write(ctx, materializedLists(out), runID, now)
	case RecordAdd:
		report, err = store.Add(ctx, materializedLists(out), runID, now)
	case RecordSubtract:
		report, err = store.Subtract(ctx, publish.Lists{
			Index:    out.Removed(KindIndex),
			Path:     out.Removed(KindPath),
			Database: out.Removed(KindDatabase),
		}, runID, now)
	default:
		return publish.Report{}, fmt.Errorf("unknown record mode %d", mode)
	}
	if err != nil {
		return publish.Report{}, err
	}
	o.logger.Info("report saved", "path", store.Path(), "runId", runID)

	if !o.project.Sitemap {
		return report, nil
	}
	path, err := publish.WriteSitemap(ctx, o.project.OutDir, o.project.URL, report.Routes(), now)
	if err != nil {
		return report, err
	}
	o.logger.Info("sitemap saved", "path", path, "urls", len(report.Routes()))
	return report, nil
}

func materializedLists(out Outcome) publish.Lists {
	return publish.Lists{
		Index:    out.Materialized(KindIndex),
		Path:     out.Materialized(KindPath),
		Database: out.Materialized(KindDatabase),
	}
}

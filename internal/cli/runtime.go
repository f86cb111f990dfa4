package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/benedict2310/ngxer/internal/config"
	"github.com/benedict2310/ngxer/internal/docsource"
	"github.com/benedict2310/ngxer/internal/output"
	"github.com/benedict2310/ngxer/internal/render"
	"github.com/spf13/cobra"
)

// commandRuntime is what every project command starts from.
type commandRuntime struct {
	Project config.Project
	Logger  *slog.Logger
}

func runtimeFromCommand(cmd *cobra.Command) (*commandRuntime, error) {
	logger, err := loggerFromCommand(cmd)
	if err != nil {
		return nil, err
	}
	path, _ := cmd.Flags().GetString("config")
	project, err := config.LoadProject(path)
	if err != nil {
		return nil, exitCodeError(exitUsage, err)
	}
	logger.Debug("project loaded", "path", project.Path, "out", project.OutDir)
	return &commandRuntime{Project: project, Logger: logger}, nil
}

// openSource opens the document store when the project renders
// collections. A missing store file is an error: run `ngxer docs import`
// first.
func (rt *commandRuntime) openSource(ctx context.Context) (*docsource.SQLite, error) {
	if len(rt.Project.DatabaseRender) == 0 {
		return nil, nil
	}
	if _, err := os.Stat(rt.Project.DocumentStore); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, exitCodeError(exitUsage, fmt.Errorf("document store %s not found (run `ngxer docs import`)", rt.Project.DocumentStore))
		}
		return nil, fmt.Errorf("stat document store %s: %w", rt.Project.DocumentStore, err)
	}
	return docsource.OpenSQLite(ctx, rt.Project.DocumentStore)
}

// newOrchestrator builds the render pipeline for one command. The returned
// cleanup closes the browser session and the document store.
func (rt *commandRuntime) newOrchestrator(cmd *cobra.Command, forceLive bool) (*render.Orchestrator, func(), error) {
	src, err := rt.openSource(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	opts := render.Options{
		Project:   rt.Project,
		ForceLive: forceLive,
		Logger:    rt.Logger,
		Out:       cmd.OutOrStdout(),
	}
	if src != nil {
		opts.Source = src
	}
	o, err := render.New(opts)
	if err != nil {
		if src != nil {
			_ = src.Close()
		}
		if errors.Is(err, render.ErrNoBuildOutput) {
			return nil, nil, exitCodeError(exitUsage, err)
		}
		return nil, nil, err
	}
	cleanup := func() {
		if err := o.Close(); err != nil {
			rt.Logger.Warn("close render session", "err", err)
		}
		if src != nil {
			if err := src.Close(); err != nil {
				rt.Logger.Warn("close document store", "err", err)
			}
		}
	}
	return o, cleanup, nil
}

// finish prints the count summary and turns route failures into exit code
// 3 when strict.
func finish(cmd *cobra.Command, out render.Outcome, strict bool) error {
	counts := out.Counts()
	fmt.Fprintf(cmd.OutOrStdout(), "Done: %s (%s)\n", output.Plural(len(out.Results), "route"), counts)
	failed := out.Failed()
	if len(failed) == 0 {
		return nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s failed\n", output.Plural(len(failed), "route"))
	if strict {
		return exitCodeError(exitRouteFailures, fmt.Errorf("%s failed", output.Plural(len(failed), "route")))
	}
	return nil
}

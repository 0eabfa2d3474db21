package ingest

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Engine orchestrates pipeline stage runs.
type Engine struct {
	env    *Env
	runLog *RunLog
	stages []Stage
}

// NewEngine creates an engine over the given stages.
func NewEngine(env *Env, runLog *RunLog, stages []Stage) *Engine {
	return &Engine{env: env, runLog: runLog, stages: stages}
}

// Run executes the selected stages in registration order, recording each in
// the ingest log. A failed stage does not stop the run; stages that depend
// on its output will simply find empty indexes and report zero matches.
func (e *Engine) Run(ctx context.Context, names []string) error {
	log := zap.L().With(zap.String("component", "ingest.engine"))

	stages, err := e.selectStages(names)
	if err != nil {
		return err
	}

	log.Info("selected stages", zap.Int("count", len(stages)))

	var succeeded, failed int

	for _, st := range stages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		stLog := log.With(zap.String("stage", st.Name()))
		stLog.Info("starting stage")

		runID, err := e.runLog.Start(ctx, st.Name())
		if err != nil {
			return eris.Wrapf(err, "engine: start run log for %s", st.Name())
		}

		start := time.Now()
		result, err := st.Run(ctx, e.env)
		elapsed := time.Since(start)

		if err != nil {
			stLog.Error("stage failed", zap.Error(err), zap.Duration("elapsed", elapsed))
			if logErr := e.runLog.Fail(ctx, runID, err.Error()); logErr != nil {
				stLog.Error("failed to record stage failure", zap.Error(logErr))
			}
			failed++
			continue
		}

		if err := e.runLog.Complete(ctx, runID, result); err != nil {
			stLog.Error("failed to record stage completion", zap.Error(err))
		}

		stLog.Info("stage complete",
			zap.Int64("rows", result.RowsInserted),
			zap.Duration("elapsed", elapsed),
		)
		succeeded++
	}

	log.Info("pipeline run complete",
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
	)
	return nil
}

// selectStages filters the registered stages by name, preserving dependency
// order. An empty selection means all stages.
func (e *Engine) selectStages(names []string) ([]Stage, error) {
	if len(names) == 0 {
		return e.stages, nil
	}

	byName := make(map[string]bool, len(names))
	for _, n := range names {
		byName[n] = true
	}

	var selected []Stage
	for _, st := range e.stages {
		if byName[st.Name()] {
			selected = append(selected, st)
			delete(byName, st.Name())
		}
	}
	for n := range byName {
		return nil, eris.Errorf("engine: unknown stage %q", n)
	}
	return selected, nil
}

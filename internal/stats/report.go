package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/typeroo/internal/model"
)

// DefaultCurveWindow is the moving-average window for curves.
const DefaultCurveWindow = 5

// Source loads stored results.
type Source interface {
	ListResults(ctx context.Context, filter model.HistoryFilter) ([]model.Result, error)
	PersonalBests(ctx context.Context, durations []int) ([]model.PersonalBest, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Filter  model.HistoryFilter
	Results []model.Result
	Summary Summary
	Bests   []model.PersonalBest
}

// BuildReport loads and prepares data for stats rendering. Personal bests
// cover all stored results regardless of the filter.
func BuildReport(ctx context.Context, src Source, filter model.HistoryFilter) (Report, error) {
	results, err := src.ListResults(ctx, filter)
	if err != nil {
		return Report{}, fmt.Errorf("list results: %w", err)
	}
	bests, err := src.PersonalBests(ctx, model.StandardDurations)
	if err != nil {
		return Report{}, fmt.Errorf("personal bests: %w", err)
	}
	return Report{
		Filter:  filter,
		Results: results,
		Summary: Summarize(results),
		Bests:   bests,
	}, nil
}

// Render writes the plain-text report.
func (r Report) Render(w io.Writer, width int, color bool) error {
	if err := RenderSummary(w, r.Summary); err != nil {
		return err
	}
	if err := RenderBests(w, r.Bests); err != nil {
		return err
	}
	if err := RenderCurves(w, r.Results, DefaultCurveWindow, width, 0, color); err != nil {
		return err
	}
	return RenderHistory(w, r.Results)
}

package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typeroo/internal/model"
)

type fakeSource struct {
	results []model.Result
	filters []model.HistoryFilter
	err     error
}

func (f *fakeSource) ListResults(_ context.Context, filter model.HistoryFilter) ([]model.Result, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Result
	for _, r := range f.results {
		if filter.Mode != "" && r.Mode != filter.Mode {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeSource) PersonalBests(_ context.Context, durations []int) ([]model.PersonalBest, error) {
	bests := make([]model.PersonalBest, len(durations))
	for i, d := range durations {
		bests[i].Duration = d
		for _, r := range f.results {
			if r.Mode == model.ModeTimed && r.Duration == d && r.WPM > bests[i].WPM {
				bests[i] = model.PersonalBest{Duration: d, WPM: r.WPM, Accuracy: r.Accuracy, At: r.EndedAt}
			}
		}
	}
	return bests, nil
}

func sampleResults() []model.Result {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	out := make([]model.Result, 0, 6)
	for i := 0; i < 6; i++ {
		mode := model.ModeTimed
		if i%3 == 2 {
			mode = model.ModeCountUp
		}
		out = append(out, model.Result{
			ID:       int64(i + 1),
			Mode:     mode,
			Duration: 30,
			EndedAt:  base.Add(time.Duration(i) * time.Hour),
			Metrics: model.Metrics{
				WPM:             40 + i*5,
				RawWPM:          45 + i*5,
				Accuracy:        90 + i,
				DurationSeconds: 30,
				CorrectChars:    100,
			},
		})
	}
	return out
}

func newTestModel(t *testing.T, src *fakeSource) *Model {
	t.Helper()
	m := NewModel(src, model.HistoryFilter{}, 3)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestOverviewShowsSummaryAndBests(t *testing.T) {
	m := newTestModel(t, &fakeSource{results: sampleResults()})
	view := m.View()
	for _, want := range []string{"Overview", "Tests", "Best WPM", "Best 30s", "60 wpm 94%"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestHistoryTabListsNewestFirst(t *testing.T) {
	m := newTestModel(t, &fakeSource{results: sampleResults()})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabHistory {
		t.Fatalf("expected history tab")
	}
	rows := m.history.Rows()
	if len(rows) != 6 || rows[0][2] != "65" {
		t.Fatalf("unexpected history rows %v", rows)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabOverview {
		t.Fatalf("expected overview tab")
	}
}

func TestWindowKeys(t *testing.T) {
	m := newTestModel(t, &fakeSource{results: sampleResults()})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'='}})
	if m.window != 4 {
		t.Fatalf("expected window 4, got %d", m.window)
	}
	for i := 0; i < 5; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	}
	if m.window != 1 {
		t.Fatalf("window must not drop below 1, got %d", m.window)
	}
}

func TestFilterAppliesMode(t *testing.T) {
	src := &fakeSource{results: sampleResults()}
	m := newTestModel(t, src)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if !m.filterMode {
		t.Fatalf("expected filter form")
	}
	for _, r := range "count-up" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter form to close, error %q", m.filterError)
	}
	last := src.filters[len(src.filters)-1]
	if last.Mode != model.ModeCountUp {
		t.Fatalf("unexpected filter %+v", last)
	}
	if len(m.report.Results) != 2 {
		t.Fatalf("expected 2 count-up results, got %d", len(m.report.Results))
	}
}

func TestFilterRejectsBadInput(t *testing.T) {
	m := newTestModel(t, &fakeSource{})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	for _, r := range "yesterday" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || !strings.Contains(m.filterError, "since") {
		t.Fatalf("expected since error, got %q", m.filterError)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterMode {
		t.Fatalf("expected esc to cancel the filter")
	}
}

func TestLoadErrorShown(t *testing.T) {
	m := newTestModel(t, &fakeSource{err: errors.New("disk gone")})
	if !strings.Contains(m.View(), "disk gone") {
		t.Fatalf("expected load error in footer")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, &fakeSource{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
}

package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typeroo/internal/model"
	"github.com/verte-zerg/typeroo/internal/store"
)

func TestBuildReport(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "typeroo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	base := time.Unix(0, 0).UTC()
	for i := 0; i < 3; i++ {
		res := result(40+10*i, 50+10*i, 90+i, 30)
		res.StartedAt = base.Add(time.Duration(i) * time.Minute)
		res.EndedAt = res.StartedAt.Add(30 * time.Second)
		if _, err := st.SaveResult(ctx, res); err != nil {
			t.Fatalf("save result: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, model.HistoryFilter{Mode: model.ModeTimed, Last: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Results) != 2 || report.Results[0].WPM != 50 || report.Results[1].WPM != 60 {
		t.Fatalf("unexpected results %+v", report.Results)
	}
	if report.Summary.Tests != 2 || report.Summary.BestWPM != 60 {
		t.Fatalf("unexpected summary %+v", report.Summary)
	}
	if len(report.Bests) != len(model.StandardDurations) || report.Bests[1].WPM != 60 {
		t.Fatalf("unexpected bests %+v", report.Bests)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, 60, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Summary", "Personal bests", "Speed", "Accuracy", "History"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
}

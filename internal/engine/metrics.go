package engine

import (
	"math"

	"github.com/verte-zerg/typeroo/internal/model"
)

// charsPerWord is the conventional word length used for WPM.
const charsPerWord = 5.0

// ComputeMetrics derives final metrics. A duration below one second counts
// as one second.
func ComputeMetrics(correct, incorrect, durationSeconds int) model.Metrics {
	if durationSeconds <= 0 {
		durationSeconds = 1
	}
	minutes := float64(durationSeconds) / 60.0
	return model.Metrics{
		WPM:             int(math.Round((float64(correct) / charsPerWord) / minutes)),
		RawWPM:          int(math.Round((float64(correct+incorrect) / charsPerWord) / minutes)),
		Accuracy:        Accuracy(correct, incorrect),
		DurationSeconds: durationSeconds,
		CorrectChars:    correct,
		IncorrectChars:  incorrect,
	}
}

// Accuracy returns the rounded percentage of correct keystrokes, or 0 when
// nothing was typed.
func Accuracy(correct, incorrect int) int {
	total := correct + incorrect
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Live holds metrics computed mid-session.
type Live struct {
	WPM      int
	RawWPM   int
	Accuracy int
	Elapsed  int
}

// LiveMetrics computes running metrics from the seconds elapsed so far.
// Before the first full second both rates are 0.
func LiveMetrics(s Session) Live {
	live := Live{
		Accuracy: Accuracy(s.correct, s.incorrect),
		Elapsed:  s.Elapsed(),
	}
	if live.Elapsed <= 0 {
		return live
	}
	minutes := float64(live.Elapsed) / 60.0
	live.WPM = clampRate((float64(s.correct) / charsPerWord) / minutes)
	live.RawWPM = clampRate((float64(s.correct+s.incorrect) / charsPerWord) / minutes)
	return live
}

func clampRate(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return int(math.Round(v))
}

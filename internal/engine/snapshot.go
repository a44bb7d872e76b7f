package engine

import "github.com/verte-zerg/typeroo/internal/model"

// Snapshot is a read-only view of a Session for observers.
type Snapshot struct {
	SessionID      uint64     `json:"sessionId"`
	Mode           model.Mode `json:"mode"`
	Status         Status     `json:"status"`
	WordIndex      int        `json:"wordIndex"`
	WordCount      int        `json:"wordCount"`
	CurrentInput   string     `json:"currentInput"`
	WordOutcomes   []Outcome  `json:"wordOutcomes"`
	TimeRemaining  int        `json:"timeRemaining"`
	Elapsed        int        `json:"elapsed"`
	CorrectChars   int        `json:"correctChars"`
	IncorrectChars int        `json:"incorrectChars"`
	LiveWPM        int        `json:"liveWpm"`
	LiveAccuracy   int        `json:"liveAccuracy"`
}

// Snapshot captures the current state and live metrics.
func (s Session) Snapshot() Snapshot {
	live := LiveMetrics(s)
	return Snapshot{
		SessionID:      s.id,
		Mode:           s.source.Mode,
		Status:         s.status,
		WordIndex:      s.wordIndex,
		WordCount:      len(s.words),
		CurrentInput:   s.input,
		WordOutcomes:   s.Outcomes(),
		TimeRemaining:  s.TimeRemaining(),
		Elapsed:        s.Elapsed(),
		CorrectChars:   s.correct,
		IncorrectChars: s.incorrect,
		LiveWPM:        live.WPM,
		LiveAccuracy:   live.Accuracy,
	}
}

// Package model defines shared data structures.
package model

import "time"

// Mode names a test variant as it is stored and passed on the command line.
type Mode string

// Supported test modes.
const (
	ModeTimed     Mode = "time"
	ModeCountUp   Mode = "count-up"
	ModeFixedText Mode = "text"
)

// StandardDurations are the timed durations offered by default.
var StandardDurations = []int{10, 30, 60}

// Config defines practice settings resolved from flags and the config file.
type Config struct {
	Mode       Mode
	Duration   int
	Text       string
	TextID     int64
	CorpusPath string
	FeedAddr   string
	APIURL     string
	APIToken   string
}

// Metrics is the immutable outcome of a finished session.
type Metrics struct {
	WPM             int
	RawWPM          int
	Accuracy        int
	DurationSeconds int
	CorrectChars    int
	IncorrectChars  int
}

// Result captures a completed typing test as it is persisted.
type Result struct {
	ID             int64
	Mode           Mode
	Duration       int
	TextID         int64
	CorrectWords   int
	IncorrectWords int
	StartedAt      time.Time
	EndedAt        time.Time
	Metrics
}

// CustomText is a user supplied text for fixed-text tests. RemoteID holds
// the web API's id for texts fetched from it; ID is the local store id.
type CustomText struct {
	ID        int64
	RemoteID  string
	Content   string
	Public    bool
	CreatedAt time.Time
}

// HistoryFilter narrows stored results for reporting.
type HistoryFilter struct {
	Mode  Mode
	Since *time.Time
	Last  int
}

// PersonalBest is the highest WPM recorded for a timed duration.
type PersonalBest struct {
	Duration int
	WPM      int
	Accuracy int
	At       time.Time
}

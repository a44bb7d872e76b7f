package tui

import "github.com/verte-zerg/typeroo/internal/model"

// tickMsg is the 1 Hz clock for one session. Ticks for an earlier session
// are ignored.
type tickMsg struct {
	id uint64
}

// savedMsg reports the outcome of sending a result to a sink.
type savedMsg struct {
	sink string
	err  error
}

// textsLoadedMsg carries the custom texts for the picker.
type textsLoadedMsg struct {
	texts []model.CustomText
	err   error
}

// textAddedMsg reports the outcome of storing a new custom text.
type textAddedMsg struct {
	id  int64
	err error
}

package tui

// Key bindings.
const (
	KeyQuit          = "q"
	KeyCtrlC         = "ctrl+c"
	KeyRestart       = "ctrl+r"
	KeyFinish        = "esc"
	KeyBack          = "esc"
	KeyCycleDuration = "tab"
	KeyCountUp       = "ctrl+u"
	KeyTexts         = "ctrl+t"
	KeyEnter         = "enter"
	KeyAddText       = "a"
	KeyTogglePublic  = "ctrl+p"
)

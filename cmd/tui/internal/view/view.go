package view

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/frontdesk/internal/actor"
	"github.com/MrJamesThe3rd/frontdesk/internal/calendar"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// Session is the operator at the terminal and the clinic's calendar.
type Session struct {
	Actor actor.Actor
	Loc   *time.Location
	Clock calendar.Clock
}

func (s Session) Today() time.Time {
	return calendar.Today(s.Clock.Now(), s.Loc)
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Session Session
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// Package tui hosts a lookup.Flow inside a bubbletea program.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"cep_lookup/internal/lookup"
)

// CopyKey copies the displayed code while the result has focus.
const CopyKey = "c"

type focus int

const (
	focusCity focus = iota
	focusRegion
	focusCandidate
	focusResult
)

// eventMsg carries a lookup.Event through the bubbletea message loop.
type eventMsg struct {
	event lookup.Event
}

// Model is the bubbletea model. The Flow is only touched from Update.
type Model struct {
	ctx  context.Context
	flow *lookup.Flow

	city      textinput.Model
	region    textinput.Model
	candidate textinput.Model
	focus     focus

	view   lookup.View
	seen   uint64
	styles styles
}

// New returns a model with the city input focused. Cmds spawned by the
// flow inherit ctx.
func New(ctx context.Context, flow *lookup.Flow) Model {
	m := Model{
		ctx:       ctx,
		flow:      flow,
		city:      newInput("City", 64),
		region:    newInput("State", 8),
		candidate: newInput(lookup.InputPlaceholder, 16),
		view:      flow.View(),
		seen:      flow.Transitions(),
		styles:    defaultStyles(),
	}
	m.setFocus(focusCity)
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.flow.Handle(msg.event)
		m.sync()
		return m, m.run(cmd)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			m.setFocus(m.next(1))
			return m, nil
		case "shift+tab", "up":
			m.setFocus(m.next(-1))
			return m, nil
		case "enter":
			return m.submit()
		case CopyKey:
			if m.focus == focusResult {
				cmd := m.flow.Copy()
				m.sync()
				return m, m.run(cmd)
			}
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusCity:
		m.city, cmd = m.city.Update(msg)
	case focusRegion:
		m.region, cmd = m.region.Update(msg)
	case focusCandidate:
		m.candidate, cmd = m.candidate.Update(msg)
	}
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	var cmd lookup.Cmd
	switch m.focus {
	case focusCandidate:
		cmd = m.flow.SubmitCandidate(m.candidate.Value())
	case focusCity, focusRegion:
		cmd = m.flow.Submit(m.city.Value(), m.region.Value())
	default:
		return m, nil
	}
	m.sync()
	return m, m.run(cmd)
}

// sync picks up a new view after a transition and moves focus to where
// the next action happens.
func (m *Model) sync() {
	if m.flow.Transitions() == m.seen {
		return
	}
	m.seen = m.flow.Transitions()

	prev := m.view.Kind
	m.view = m.flow.View()

	switch m.view.Kind {
	case lookup.ViewFound:
		if prev != lookup.ViewFound {
			m.setFocus(focusResult)
		}
	case lookup.ViewNotFound:
		if prev != lookup.ViewNotFound {
			m.candidate.SetValue(m.view.Input.Value)
			m.setFocus(focusCandidate)
		}
	default:
		if m.focus == focusCandidate || m.focus == focusResult {
			m.setFocus(focusCity)
		}
	}
}

// run adapts a lookup.Cmd to bubbletea.
func (m Model) run(cmd lookup.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		ev := cmd(ctx)
		if ev == nil {
			return nil
		}
		return eventMsg{event: ev}
	}
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	m.city.Blur()
	m.region.Blur()
	m.candidate.Blur()
	switch f {
	case focusCity:
		m.city.Focus()
	case focusRegion:
		m.region.Focus()
	case focusCandidate:
		m.candidate.Focus()
	}
}

// next cycles through the regions available in the current view.
func (m Model) next(step int) focus {
	order := []focus{focusCity, focusRegion}
	switch m.view.Kind {
	case lookup.ViewNotFound:
		order = append(order, focusCandidate)
	case lookup.ViewFound:
		order = append(order, focusResult)
	}

	idx := 0
	for i, f := range order {
		if f == m.focus {
			idx = i
		}
	}
	idx = (idx + step + len(order)) % len(order)
	return order[idx]
}

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cep_lookup/internal/lookup"
)

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	code    lipgloss.Style
	errText lipgloss.Style
	alert   lipgloss.Style
	button  lipgloss.Style
	pressed lipgloss.Style
	focused lipgloss.Style
	result  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		label:   lipgloss.NewStyle().Width(8),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		code:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		errText: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		alert:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		button:  lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()),
		pressed: lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder()).Reverse(true),
		focused: lipgloss.NewStyle().BorderForeground(lipgloss.Color("39")),
		result:  lipgloss.NewStyle().MarginTop(1),
	}
}

func (m Model) View() string {
	var b strings.Builder
	s := m.styles

	b.WriteString(s.title.Render("Postal code lookup"))
	b.WriteString("\n\n")
	b.WriteString(s.label.Render("City") + m.city.View() + "\n")
	b.WriteString(s.label.Render("State") + m.region.View() + "\n")

	b.WriteString(s.result.Render(m.renderResult()))
	b.WriteString("\n\n")
	b.WriteString(s.muted.Render(m.help()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderResult() string {
	s := m.styles
	v := m.view

	switch v.Kind {
	case lookup.ViewValidation:
		return s.alert.Render(v.Message)
	case lookup.ViewLoading:
		return s.muted.Render(v.Message)
	case lookup.ViewFound:
		return lipgloss.JoinHorizontal(lipgloss.Center,
			s.code.Render(v.Code)+"  ",
			m.renderButton(v.Copy, m.focus == focusResult),
		)
	case lookup.ViewNotFound:
		lines := []string{v.Message, m.candidate.View()}
		if v.Alert != "" {
			lines = append(lines, s.alert.Render(v.Alert))
		}
		if v.Notice != "" {
			lines = append(lines, s.errText.Render(v.Notice))
		}
		if v.Detail != "" {
			lines = append(lines, s.muted.Render(v.Detail))
		}
		lines = append(lines, m.renderButton(v.Save, m.focus == focusCandidate))
		return strings.Join(lines, "\n")
	case lookup.ViewError:
		out := s.errText.Render(v.Message)
		if v.Detail != "" {
			out += "\n" + s.muted.Render(v.Detail)
		}
		return out
	default:
		return ""
	}
}

func (m Model) renderButton(btn *lookup.Button, focused bool) string {
	if btn == nil {
		return ""
	}
	style := m.styles.button
	if btn.Pressed {
		style = m.styles.pressed
	}
	if focused {
		style = style.Inherit(m.styles.focused)
	}
	if btn.Disabled {
		style = style.Faint(true)
	}
	return style.Render(btn.Label)
}

func (m Model) help() string {
	switch m.view.Kind {
	case lookup.ViewFound:
		return "c copy • tab switch field • enter search • esc quit"
	case lookup.ViewNotFound:
		return "enter save • tab switch field • esc quit"
	default:
		return "enter search • tab switch field • esc quit"
	}
}

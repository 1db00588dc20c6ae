package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"cep_lookup/internal/lookup"
)

type stubClient struct {
	search lookup.LookupResult
	save   lookup.SaveResult
	saved  []lookup.SaveRequest
}

func (c *stubClient) Search(context.Context, lookup.Query) (lookup.LookupResult, error) {
	return c.search, nil
}

func (c *stubClient) Save(_ context.Context, req lookup.SaveRequest) (lookup.SaveResult, error) {
	c.saved = append(c.saved, req)
	return c.save, nil
}

type stubClipboard struct {
	mu     sync.Mutex
	writes []string
}

func (c *stubClipboard) WriteText(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, text)
	return nil
}

// settle runs cmd and every follow-up command, feeding flow events back
// into the model.
func settle(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 64 {
			t.Fatalf("model did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case eventMsg:
			var c tea.Cmd
			m, c = m.Update(msg)
			queue = append(queue, c)
		}
	}
	return m
}

func typeText(m tea.Model, text string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func press(t *testing.T, m tea.Model, key tea.KeyMsg) tea.Model {
	t.Helper()
	m, cmd := m.Update(key)
	return settle(t, m, cmd)
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyCopy  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(CopyKey)}
)

func newModel(client lookup.Client, clip lookup.Clipboard) tea.Model {
	flow := lookup.NewFlow(client, clip, lookup.Options{})
	return New(context.Background(), flow)
}

func TestSearchAndCopy(t *testing.T) {
	clip := &stubClipboard{}
	m := newModel(&stubClient{search: lookup.LookupResult{Found: true, Code: "62701"}}, clip)

	m = typeText(m, "Springfield")
	m, _ = m.Update(keyTab)
	m = typeText(m, "IL")
	m = press(t, m, keyEnter)

	if !strings.Contains(m.View(), "62701") {
		t.Fatalf("expected code in view:\n%s", m.View())
	}
	if m.(Model).focus != focusResult {
		t.Fatalf("expected result focus after found")
	}

	m = press(t, m, keyCopy)
	if len(clip.writes) != 1 || clip.writes[0] != "62701" {
		t.Fatalf("expected clipboard write, got %v", clip.writes)
	}
	if !strings.Contains(m.View(), lookup.LabelCopy) {
		t.Fatalf("expected copy label restored:\n%s", m.View())
	}
}

func TestNotFoundSave(t *testing.T) {
	client := &stubClient{save: lookup.SaveResult{Success: true, Code: "01001-000"}}
	m := newModel(client, nil)

	m = typeText(m, "Nowhere")
	m, _ = m.Update(keyTab)
	m = typeText(m, "ZZ")
	m = press(t, m, keyEnter)

	if !strings.Contains(m.View(), lookup.MsgNotFound) {
		t.Fatalf("expected not-found message:\n%s", m.View())
	}
	if m.(Model).focus != focusCandidate {
		t.Fatalf("expected candidate focus")
	}

	m = typeText(m, "01001000")
	m = press(t, m, keyEnter)

	if len(client.saved) != 1 || client.saved[0].CandidateCode != "01001000" {
		t.Fatalf("unexpected save calls %+v", client.saved)
	}
	if !strings.Contains(m.View(), "01001-000") {
		t.Fatalf("expected saved code in view:\n%s", m.View())
	}
}

func TestValidationMessage(t *testing.T) {
	m := newModel(&stubClient{}, nil)
	m = press(t, m, keyEnter)

	if !strings.Contains(m.View(), lookup.MsgFillQuery) {
		t.Fatalf("expected validation message:\n%s", m.View())
	}
}

func TestCopyKeyTypesIntoInputs(t *testing.T) {
	m := newModel(&stubClient{}, nil)
	m = typeText(m, CopyKey)

	if got := m.(Model).city.Value(); got != CopyKey {
		t.Fatalf("expected %q typed into city, got %q", CopyKey, got)
	}
}

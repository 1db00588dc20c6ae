package lookup

import (
	"context"
	"errors"
)

// ErrLoopStopped is returned by Loop actions after Run has returned.
var ErrLoopStopped = errors.New("lookup loop stopped")

// Loop is a cooperative single-owner host for a Flow. User actions and Cmd
// results are serialized onto one goroutine; Cmds run on their own.
type Loop struct {
	flow    *Flow
	render  func(View)
	actions chan func(*Flow) Cmd
	events  chan Event
	stopped chan struct{}
}

// NewLoop hosts flow. render is called on the loop goroutine after every
// transition, and once with the initial view.
func NewLoop(flow *Flow, render func(View)) *Loop {
	if render == nil {
		render = func(View) {}
	}
	return &Loop{
		flow:    flow,
		render:  render,
		actions: make(chan func(*Flow) Cmd),
		events:  make(chan Event),
		stopped: make(chan struct{}),
	}
}

// Run processes actions and events until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)

	l.render(l.flow.View())
	for {
		var cmd Cmd
		before := l.flow.Transitions()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case action := <-l.actions:
			cmd = action(l.flow)
		case ev := <-l.events:
			cmd = l.flow.Handle(ev)
		}

		if l.flow.Transitions() != before {
			l.render(l.flow.View())
		}
		l.spawn(ctx, cmd)
	}
}

// Submit posts a query submission.
func (l *Loop) Submit(rawCity, rawRegionCode string) error {
	return l.post(func(f *Flow) Cmd { return f.Submit(rawCity, rawRegionCode) })
}

// SubmitCandidate posts a manual save.
func (l *Loop) SubmitCandidate(rawCandidate string) error {
	return l.post(func(f *Flow) Cmd { return f.SubmitCandidate(rawCandidate) })
}

// Copy posts a copy press.
func (l *Loop) Copy() error {
	return l.post(func(f *Flow) Cmd { return f.Copy() })
}

func (l *Loop) post(action func(*Flow) Cmd) error {
	select {
	case l.actions <- action:
		return nil
	case <-l.stopped:
		return ErrLoopStopped
	}
}

func (l *Loop) spawn(ctx context.Context, cmd Cmd) {
	if cmd == nil {
		return
	}
	go func() {
		ev := cmd(ctx)
		if ev == nil {
			return
		}
		select {
		case l.events <- ev:
		case <-l.stopped:
		}
	}()
}

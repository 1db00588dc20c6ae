package lookup

import (
	"context"
	"errors"
	"time"

	"cep_lookup/platform/logger"
)

const (
	// DefaultLoadingDelay lets the loading indicator paint before the
	// search request goes out.
	DefaultLoadingDelay = 30 * time.Millisecond
	// DefaultCopyResetDelay is how long the copy confirmation stays visible.
	DefaultCopyResetDelay = 700 * time.Millisecond
)

var errNoClipboard = errors.New("clipboard unavailable")

// Cmd is blocking work requested by a transition. It runs off the owning
// loop and returns the Event to feed back through Flow.Handle, or nil.
type Cmd func(ctx context.Context) Event

// Event is the result of a Cmd. Every event is tagged with the lookup
// cycle that produced it.
type Event interface {
	cycleID() uint64
}

type searchDue struct {
	cycle uint64
}

type searchDone struct {
	cycle  uint64
	result LookupResult
	err    error
}

type saveDone struct {
	cycle  uint64
	req    SaveRequest
	result SaveResult
	err    error
}

type copyDone struct {
	cycle      uint64
	generation uint64
	err        error
}

type copyReset struct {
	cycle      uint64
	generation uint64
}

func (e searchDue) cycleID() uint64  { return e.cycle }
func (e searchDone) cycleID() uint64 { return e.cycle }
func (e saveDone) cycleID() uint64   { return e.cycle }
func (e copyDone) cycleID() uint64   { return e.cycle }
func (e copyReset) cycleID() uint64  { return e.cycle }

// Options tune a Flow.
type Options struct {
	LoadingDelay   time.Duration
	CopyResetDelay time.Duration
	// DiscardFormOnSaveError replaces the whole view with Failed when the
	// save call itself fails, instead of keeping the manual-entry form.
	DiscardFormOnSaveError bool
	Logger                 *logger.Logger
}

// Flow is the LookupFlow state machine. It is not safe for concurrent use;
// only its owning loop may call its methods.
type Flow struct {
	client    Client
	clipboard Clipboard
	opts      Options
	log       *logger.Logger

	state State
	// transitions counts state replacements so hosts know when to re-render.
	transitions uint64

	cycle      uint64
	cycleAbort chan struct{}
	copyAbort  chan struct{}
}

// NewFlow creates a Flow in the Idle state.
func NewFlow(client Client, clipboard Clipboard, opts Options) *Flow {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Flow{
		client:    client,
		clipboard: clipboard,
		opts:      opts,
		log:       log,
		state:     Idle{},
	}
}

// State returns the current state.
func (f *Flow) State() State {
	return f.state
}

// View renders the current state.
func (f *Flow) View() View {
	return Render(f.state)
}

// Transitions returns how many times the state has been replaced.
func (f *Flow) Transitions() uint64 {
	return f.transitions
}

// Cycle returns the current lookup cycle identifier.
func (f *Flow) Cycle() uint64 {
	return f.cycle
}

// Submit starts a new lookup cycle, superseding any in-flight one.
func (f *Flow) Submit(rawCity, rawRegionCode string) Cmd {
	f.beginCycle()

	q, err := NewQuery(rawCity, rawRegionCode)
	if err != nil {
		f.set(ValidationFailed{Message: MsgFillQuery})
		return nil
	}

	f.set(Searching{Query: q})
	return f.guard(after(f.opts.LoadingDelay, searchDue{cycle: f.cycle}))
}

// SubmitCandidate offers a manual code for the not-found query. It is a
// no-op outside NotFound and while a save is outstanding.
func (f *Flow) SubmitCandidate(rawCandidate string) Cmd {
	nf, ok := f.state.(NotFound)
	if !ok || !nf.Save.SaveEnabled() {
		return nil
	}

	save := nf.Save
	req, err := NewSaveRequest(save.Query, rawCandidate)
	if err != nil {
		save.Candidate = rawCandidate
		save.Warning = MsgEnterCode
		f.set(NotFound{Save: save})
		return nil
	}

	save.Phase = SaveInProgress
	save.Candidate = req.CandidateCode
	save.Message = ""
	save.Detail = ""
	save.Warning = ""
	f.set(NotFound{Save: save})

	client, cycle := f.client, f.cycle
	return f.guard(func(ctx context.Context) Event {
		result, err := client.Save(ctx, req)
		return saveDone{cycle: cycle, req: req, result: result, err: err}
	})
}

// Copy presses the copy control of the Found view. It is a no-op in any
// other state.
func (f *Flow) Copy() Cmd {
	found, ok := f.state.(Found)
	if !ok {
		return nil
	}

	if f.copyAbort != nil {
		close(f.copyAbort)
	}
	f.copyAbort = make(chan struct{})

	found.Copy.generation++
	found.Copy.Pressed = true
	f.set(found)

	clipboard, cycle, generation, value := f.clipboard, f.cycle, found.Copy.generation, found.Copy.Value
	return f.guard(func(ctx context.Context) Event {
		var err error
		if clipboard == nil {
			err = errNoClipboard
		} else {
			err = clipboard.WriteText(ctx, value)
		}
		return copyDone{cycle: cycle, generation: generation, err: err}
	}, f.copyAbort)
}

// Handle applies the result of a Cmd. Events from superseded cycles or
// from replaced views are dropped.
func (f *Flow) Handle(ev Event) Cmd {
	if ev == nil {
		return nil
	}
	if ev.cycleID() != f.cycle {
		f.log.Debug("dropping stale lookup event", "event_cycle", ev.cycleID(), "cycle", f.cycle)
		return nil
	}

	switch e := ev.(type) {
	case searchDue:
		return f.handleSearchDue()
	case searchDone:
		f.handleSearchDone(e)
	case saveDone:
		f.handleSaveDone(e)
	case copyDone:
		return f.handleCopyDone(e)
	case copyReset:
		f.handleCopyReset(e)
	}
	return nil
}

func (f *Flow) handleSearchDue() Cmd {
	searching, ok := f.state.(Searching)
	if !ok {
		return nil
	}

	client, cycle, q := f.client, f.cycle, searching.Query
	return f.guard(func(ctx context.Context) Event {
		result, err := client.Search(ctx, q)
		return searchDone{cycle: cycle, result: result, err: err}
	})
}

func (f *Flow) handleSearchDone(e searchDone) {
	searching, ok := f.state.(Searching)
	if !ok {
		return
	}
	q := searching.Query

	switch {
	case e.err != nil:
		f.log.Warn("search call failed", "error", e.err, "cycle", e.cycle)
		f.set(Failed{Query: q, Op: "search", Message: MsgSearchFailed, Detail: e.err.Error()})
	case e.result.Found && e.result.Code != "":
		f.set(Found{Query: q, Code: e.result.Code, Copy: newCopyFeedback(e.result.Code)})
	case e.result.Found:
		f.set(Failed{Query: q, Op: "search", Message: MsgSearchFailed, Detail: "found without a code"})
	default:
		f.set(NotFound{Save: SaveFlow{Query: q, Phase: SaveEditing}})
	}
}

func (f *Flow) handleSaveDone(e saveDone) {
	nf, ok := f.state.(NotFound)
	if !ok || nf.Save.Phase != SaveInProgress {
		return
	}
	save := nf.Save

	switch {
	case e.err != nil:
		f.log.Warn("save call failed", "error", e.err, "cycle", e.cycle)
		if f.opts.DiscardFormOnSaveError {
			f.set(Failed{Query: save.Query, Op: "save", Message: MsgSaveFailed, Detail: e.err.Error()})
			return
		}
		save.Phase = SaveRejected
		save.Message = MsgSaveFailed
		save.Detail = e.err.Error()
		f.set(NotFound{Save: save})
	case e.result.Success:
		code := e.result.Code
		if code == "" {
			code = e.req.CandidateCode
		}
		f.set(Found{Query: save.Query, Code: code, Saved: true, Copy: newCopyFeedback(code)})
	default:
		save.Phase = SaveRejected
		save.Message = e.result.Message
		if save.Message == "" {
			save.Message = MsgSaveRejected
		}
		f.set(NotFound{Save: save})
	}
}

func (f *Flow) handleCopyDone(e copyDone) Cmd {
	found, ok := f.state.(Found)
	if !ok || found.Copy.generation != e.generation {
		return nil
	}

	if e.err != nil {
		f.log.Debug("clipboard write failed", "error", e.err)
		found.Copy.Label = LabelCopiedFallback
	} else {
		found.Copy.Label = LabelCopied
	}
	f.set(found)

	return f.guard(after(f.opts.CopyResetDelay, copyReset{cycle: f.cycle, generation: e.generation}), f.copyAbort)
}

func (f *Flow) handleCopyReset(e copyReset) {
	found, ok := f.state.(Found)
	if !ok || found.Copy.generation != e.generation {
		return
	}
	found.Copy.Label = LabelCopy
	found.Copy.Pressed = false
	f.set(found)
}

func (f *Flow) set(s State) {
	f.state = s
	f.transitions++
}

// beginCycle aborts the work of the current cycle and its copy control,
// then starts a new cycle.
func (f *Flow) beginCycle() {
	if f.cycleAbort != nil {
		close(f.cycleAbort)
	}
	if f.copyAbort != nil {
		close(f.copyAbort)
		f.copyAbort = nil
	}
	f.cycle++
	f.cycleAbort = make(chan struct{})
}

// guard binds cmd to the current cycle and any extra abort channels. An
// aborted cmd returns nil before starting and has its context cancelled
// while running. The cycle is attached to the context for logging.
func (f *Flow) guard(cmd Cmd, extra ...chan struct{}) Cmd {
	aborts := append([]chan struct{}{f.cycleAbort}, extra...)
	cycle := f.cycle
	return func(ctx context.Context) Event {
		for _, abort := range aborts {
			select {
			case <-abort:
				return nil
			default:
			}
		}

		ctx, cancel := context.WithCancel(context.WithValue(ctx, logger.CycleIDKey, cycle))
		defer cancel()
		for _, abort := range aborts {
			go func(abort chan struct{}) {
				select {
				case <-abort:
					cancel()
				case <-ctx.Done():
				}
			}(abort)
		}
		return cmd(ctx)
	}
}

// after returns a Cmd that yields ev once d has elapsed.
func after(d time.Duration, ev Event) Cmd {
	return func(ctx context.Context) Event {
		if ctx.Err() != nil {
			return nil
		}
		if d <= 0 {
			return ev
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return ev
		case <-ctx.Done():
			return nil
		}
	}
}

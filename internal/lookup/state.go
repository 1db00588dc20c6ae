package lookup

// User-visible labels and messages.
const (
	MsgFillQuery     = "Fill in city and state."
	MsgSearching     = "Searching..."
	MsgNotFound      = "Postal code not found."
	MsgEnterCode     = "Enter a postal code."
	MsgSaveRejected  = "Could not save the postal code."
	MsgSearchFailed  = "Could not complete the search."
	MsgSaveFailed    = "Could not complete the save."
	InputPlaceholder = "Postal code (8 digits or with hyphen)"

	LabelCopy           = "Copy"
	LabelCopied         = "Copied!"
	LabelCopiedFallback = "Copied"
	LabelSave           = "Save"
	LabelSaving         = "Saving..."
)

// Phase names a LookupFlow state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidationFailed
	PhaseSearching
	PhaseFound
	PhaseNotFound
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidationFailed:
		return "validation_failed"
	case PhaseSearching:
		return "searching"
	case PhaseFound:
		return "found"
	case PhaseNotFound:
		return "not_found"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the tagged union of LookupFlow states. Exactly one is current.
type State interface {
	Phase() Phase
}

// Idle is the initial state.
type Idle struct{}

// ValidationFailed means the submitted query was rejected locally.
type ValidationFailed struct {
	Message string
}

// Searching shows the loading indicator while the search is pending.
type Searching struct {
	Query Query
}

// Found displays a code with its copy control. Saved marks codes reached
// through a successful manual save; the rendering is identical.
type Found struct {
	Query Query
	Code  string
	Saved bool
	Copy  CopyFeedback
}

// NotFound offers manual entry for the originating query.
type NotFound struct {
	Save SaveFlow
}

// Failed is a transport failure that ended the cycle.
type Failed struct {
	Query   Query
	Op      string
	Message string
	Detail  string
}

func (Idle) Phase() Phase             { return PhaseIdle }
func (ValidationFailed) Phase() Phase { return PhaseValidationFailed }
func (Searching) Phase() Phase        { return PhaseSearching }
func (Found) Phase() Phase            { return PhaseFound }
func (NotFound) Phase() Phase         { return PhaseNotFound }
func (Failed) Phase() Phase           { return PhaseFailed }

// SavePhase names a SaveFlow sub-state.
type SavePhase int

const (
	// SaveEditing waits for the user to submit a candidate.
	SaveEditing SavePhase = iota
	// SaveInProgress has a save call outstanding; the control is disabled.
	SaveInProgress
	// SaveRejected shows why the last attempt failed and allows a retry.
	SaveRejected
)

// SaveFlow is the manual-entry sub-state of NotFound.
type SaveFlow struct {
	Query     Query
	Phase     SavePhase
	Candidate string
	// Message explains a rejected save.
	Message string
	// Detail carries the transport error behind a failed save call.
	Detail string
	// Warning is the blocking prompt for an empty candidate.
	Warning string
}

// SaveLabel is the text of the save control.
func (s SaveFlow) SaveLabel() string {
	if s.Phase == SaveInProgress {
		return LabelSaving
	}
	return LabelSave
}

// SaveEnabled reports whether the save control accepts presses.
func (s SaveFlow) SaveEnabled() bool {
	return s.Phase != SaveInProgress
}

// CopyFeedback is the transient state of the copy control bound to one
// Found view. Ready when Pressed is false and Label is LabelCopy.
type CopyFeedback struct {
	Value   string
	Label   string
	Pressed bool
	// generation increases on every press; only the latest press may
	// restore the label.
	generation uint64
}

func newCopyFeedback(value string) CopyFeedback {
	return CopyFeedback{Value: value, Label: LabelCopy}
}

// Ready reports whether the control shows its original label and affordance.
func (c CopyFeedback) Ready() bool {
	return !c.Pressed && c.Label == LabelCopy
}

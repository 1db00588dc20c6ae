package lookup

// ViewKind identifies which layout fills the result region.
type ViewKind int

const (
	ViewEmpty ViewKind = iota
	ViewValidation
	ViewLoading
	ViewFound
	ViewNotFound
	ViewError
)

// Button is a rendered control.
type Button struct {
	Label    string
	Disabled bool
	Pressed  bool
}

// Input is a rendered text field.
type Input struct {
	Placeholder string
	Value       string
}

// View is the full content of the result region. Every transition
// replaces it wholesale.
type View struct {
	Kind    ViewKind
	Message string
	Detail  string
	Code    string
	Copy    *Button
	Input   *Input
	Save    *Button
	// Alert is a blocking prompt the host shows before anything else.
	Alert string
	// Notice explains a rejected save next to the form.
	Notice string
}

// Render is a pure function of the state.
func Render(s State) View {
	switch st := s.(type) {
	case ValidationFailed:
		return View{Kind: ViewValidation, Message: st.Message}
	case Searching:
		return View{Kind: ViewLoading, Message: MsgSearching}
	case Found:
		return View{
			Kind: ViewFound,
			Code: st.Code,
			Copy: &Button{Label: st.Copy.Label, Pressed: st.Copy.Pressed},
		}
	case NotFound:
		return renderNotFound(st.Save)
	case Failed:
		return View{Kind: ViewError, Message: st.Message, Detail: st.Detail}
	default:
		return View{Kind: ViewEmpty}
	}
}

func renderNotFound(save SaveFlow) View {
	v := View{
		Kind:    ViewNotFound,
		Message: MsgNotFound,
		Input:   &Input{Placeholder: InputPlaceholder, Value: save.Candidate},
		Save:    &Button{Label: save.SaveLabel(), Disabled: !save.SaveEnabled()},
		Alert:   save.Warning,
	}
	if save.Phase == SaveRejected {
		v.Notice = save.Message
		v.Detail = save.Detail
	}
	return v
}
